package llm

import (
	"fmt"
	"strings"

	"educraft-session-service/internal/domain"
)

const questionShape = `{ "question": "string", "options": ["option1", "option2", "option3", "option4"], "correct_index": 0-3, "explanation": "string" }`

const maxChapterExcerpt = 500

func questionPrompt(req domain.GenerationRequest) string {
	var b strings.Builder
	if req.ChapterContent != "" {
		excerpt := req.ChapterContent
		if r := []rune(excerpt); len(r) > maxChapterExcerpt {
			excerpt = string(r[:maxChapterExcerpt])
		}
		fmt.Fprintf(&b, "You are an educational game master. Generate a unique %s %s question for grade %s students.\n", req.Difficulty, req.Subject, req.Grade)
		fmt.Fprintf(&b, "Base it on this chapter content: %s\n", excerpt)
	} else {
		fmt.Fprintf(&b, "You are an educational game master. Generate a unique %s level %s question for grade %s students.\n", req.Difficulty, req.Subject, req.Grade)
		fmt.Fprintf(&b, "This is a %s interaction: %s.\n", req.InteractionType, interactionFlavor(req.InteractionType))
		fmt.Fprintf(&b, "Make the question specifically about %s.\n", req.Subject)
		topics := "general concepts"
		if len(req.WeakTopics) > 0 {
			topics = strings.Join(req.WeakTopics, ", ")
		}
		fmt.Fprintf(&b, "Prioritize these weak topics if relevant: %s.\n", topics)
	}
	b.WriteString("Make it different from any question you generated before.\n")
	b.WriteString("Return ONLY valid JSON: " + questionShape)
	return b.String()
}

func interactionFlavor(kind string) string {
	switch kind {
	case domain.InteractionResource:
		return "collecting a resource"
	case domain.InteractionQuest:
		return "completing a quest"
	default:
		return "battle against an enemy"
	}
}

func worldPrompt(subject, grade string) string {
	return fmt.Sprintf(`Generate a fantasy block-building world themed around %s for grade %s students.
Return ONLY valid JSON: { "world_name": "string", "biome_description": "string", "enemies": ["enemy1", "enemy2", "enemy3"], "resources": ["resource1", "resource2", "resource3"], "quest_title": "string", "quest_description": "string" }`, subject, grade)
}

func tutorPrompt(subject, grade, message string, history []domain.TutorMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a warm, encouraging tutor for a grade %s student learning %s.\n", grade, subject)
	b.WriteString("Keep explanations short, fun, and age-appropriate.\nPrevious conversation:\n")
	for _, m := range history {
		role := m.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	fmt.Fprintf(&b, "User: %s\nTutor:", message)
	return b.String()
}

func weakTopicsPrompt(subject, grade string, wrong []string) string {
	return fmt.Sprintf(`A grade %s student studying %s got these questions wrong: %s.
Identify up to 5 weak topic areas. Return ONLY valid JSON: { "weak_topics": ["topic1", "topic2", "topic3"] }`, grade, subject, strings.Join(wrong, ", "))
}

func insightPrompt(students []domain.StudentStats) string {
	lines := make([]string, 0, len(students))
	for _, s := range students {
		name := s.Name
		if name == "" {
			name = "Student"
		}
		lines = append(lines, fmt.Sprintf("%s: %v, weak areas: %v", name, s.SubjectStats, s.WeakTopics))
	}
	return fmt.Sprintf(`Here are stats for a class of students: %s.
Write 3-4 sentences of actionable insight for their teacher about common weak areas and suggested next steps.
Return ONLY valid JSON: { "insight": "string" }`, strings.Join(lines, "; "))
}
