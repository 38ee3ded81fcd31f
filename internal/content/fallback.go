package content

import "educraft-session-service/internal/domain"

var fallbackQuestions = map[string]map[string]domain.Question{
	"Math": {
		"easy": {
			Question:     "What is 5 + 7?",
			Options:      []string{"10", "11", "12", "13"},
			CorrectIndex: 2,
			Explanation:  "5 + 7 = 12",
		},
		"medium": {
			Question:     "What is 24 ÷ 4?",
			Options:      []string{"4", "5", "6", "7"},
			CorrectIndex: 2,
			Explanation:  "24 ÷ 4 = 6",
		},
		"hard": {
			Question:     "Solve: 3x + 5 = 20. What is x?",
			Options:      []string{"3", "5", "7", "15"},
			CorrectIndex: 1,
			Explanation:  "3x + 5 = 20 → 3x = 15 → x = 5",
		},
	},
	"Science": {
		"easy": {
			Question:     "What gas do plants absorb from the air?",
			Options:      []string{"Oxygen", "Nitrogen", "Carbon Dioxide", "Hydrogen"},
			CorrectIndex: 2,
			Explanation:  "Plants absorb carbon dioxide for photosynthesis",
		},
		"medium": {
			Question:     "What is the boiling point of water?",
			Options:      []string{"90°C", "100°C", "110°C", "120°C"},
			CorrectIndex: 1,
			Explanation:  "Water boils at 100°C at sea level",
		},
		"hard": {
			Question:     "What is the chemical formula for water?",
			Options:      []string{"CO2", "H2O", "NaCl", "O2"},
			CorrectIndex: 1,
			Explanation:  "Water is H2O - two hydrogen atoms and one oxygen",
		},
	},
}

// FallbackQuestion returns the pre-authored question for subject and difficulty.
// Unknown subjects use Math, unknown difficulties use medium.
func FallbackQuestion(subject, difficulty string) domain.Question {
	bySubject, ok := fallbackQuestions[subject]
	if !ok {
		bySubject = fallbackQuestions[domain.DefaultSubject]
	}
	q, ok := bySubject[difficulty]
	if !ok {
		q = bySubject[domain.DefaultDifficulty]
	}
	// Options is shared table state; hand out a copy.
	q.Options = append([]string(nil), q.Options...)
	return q
}

var fallbackWorlds = map[string]domain.World{
	"Math": {
		WorldName:        "Crystal Peaks",
		BiomeDescription: "A crystalline mountain world filled with geometric shapes and number runes",
		Enemies:          []string{"Subtraction Slime", "Division Dragon", "Fraction Phantom"},
		Resources:        []string{"Number Block", "Shape Crystal", "Equation Ore"},
		QuestTitle:       "Save the Crystal Kingdom",
		QuestDescription: "Solve math problems to unlock the crystal gates and save the kingdom",
	},
	"Science": {
		WorldName:        "Neon Lab Zone",
		BiomeDescription: "A futuristic laboratory world with glowing elements and chemical reactions",
		Enemies:          []string{"Battery Bot", "Molecule Monster", "Gravity Golem"},
		Resources:        []string{"Energy Cell", "Atom Fragment", "DNA Strand"},
		QuestTitle:       "Power Up the Lab",
		QuestDescription: "Answer science questions to generate energy and power the laboratory",
	},
	"History": {
		WorldName:        "Ancient Ruins",
		BiomeDescription: "A world of ancient civilizations and forgotten treasures",
		Enemies:          []string{"Pharaoh's Curse", "Viking Raider", "Knight Specter"},
		Resources:        []string{"Gold Coin", "Ancient Artifact", "Scroll of Wisdom"},
		QuestTitle:       "Uncover the Past",
		QuestDescription: "Solve historical challenges to unlock ancient secrets",
	},
	"Geography": {
		WorldName:        "Terra Nova",
		BiomeDescription: "A beautiful terrain world with mountains, rivers, and diverse biomes",
		Enemies:          []string{"Storm Sprite", "Volcano Giant", "Tornado Spirit"},
		Resources:        []string{"Map Fragment", "Compass Crystal", "Landmark Stone"},
		QuestTitle:       "Map the World",
		QuestDescription: "Answer geography questions to chart new territories",
	},
	"English": {
		WorldName:        "Storybook Library",
		BiomeDescription: "A magical library world where characters come to life from books",
		Enemies:          []string{"Grammar Goblin", "Spelling Spider", "Punctuation Poltergeist"},
		Resources:        []string{"Word Gem", "Story Page", "Magic Quill"},
		QuestTitle:       "Complete the Story",
		QuestDescription: "Solve language challenges to write the final chapter",
	},
}

// FallbackWorld returns the pre-authored world for subject, Math when unknown.
func FallbackWorld(subject string) domain.World {
	w, ok := fallbackWorlds[subject]
	if !ok {
		w = fallbackWorlds[domain.DefaultSubject]
	}
	w.Enemies = append([]string(nil), w.Enemies...)
	w.Resources = append([]string(nil), w.Resources...)
	return w
}

// FallbackTutorReply is sent when the tutor model is unavailable.
func FallbackTutorReply(subject string) string {
	return "I'm here to help! Ask me anything about " + subject + "!"
}

// FallbackInsight is sent when class insight generation fails.
const FallbackInsight = "Your class is making great progress! Keep up the excellent work."

// NoStudentsInsight is returned without calling the generator when the class is empty.
const NoStudentsInsight = "No student data available for analysis."
