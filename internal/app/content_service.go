package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"educraft-session-service/internal/content"
	"educraft-session-service/internal/domain"
)

const (
	maxTutorHistory = 5
	maxWrongAnswers = 10
	maxWeakTopics   = 5
	maxStudents     = 10
)

// CompanionGenerator covers the generator call sites other than questions.
type CompanionGenerator interface {
	GenerateWorld(ctx context.Context, subject, grade string) (domain.World, error)
	TutorReply(ctx context.Context, subject, grade, message string, history []domain.TutorMessage) (string, error)
	WeakTopics(ctx context.Context, subject, grade string, wrongAnswers []string) ([]string, error)
	ClassInsight(ctx context.Context, students []domain.StudentStats) (string, error)
}

// ContentService wraps companion generator calls with static fallbacks, so
// callers always get usable content.
type ContentService struct {
	generator CompanionGenerator
	timeout   time.Duration
	log       *slog.Logger
}

func NewContentService(generator CompanionGenerator, timeout time.Duration, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{generator: generator, timeout: timeout, log: logger}
}

// World returns a themed world for subject and grade.
func (s *ContentService) World(ctx context.Context, subject, grade string) domain.World {
	subject, grade = orDefault(subject, domain.DefaultSubject), orDefault(grade, domain.DefaultGrade)
	ctx, cancel := s.bound(ctx)
	defer cancel()

	w, err := s.generator.GenerateWorld(ctx, subject, grade)
	if err == nil && !w.Valid() {
		err = domain.ErrMalformedContent
	}
	if err != nil {
		s.log.Warn("world generation failed, serving fallback", "subject", subject, "error", err)
		return content.FallbackWorld(subject)
	}
	return w
}

// Tutor answers a student message using the last few turns of history.
func (s *ContentService) Tutor(ctx context.Context, subject, grade, message string, history []domain.TutorMessage) string {
	subject, grade = orDefault(subject, domain.DefaultSubject), orDefault(grade, domain.DefaultGrade)
	if len(history) > maxTutorHistory {
		history = history[len(history)-maxTutorHistory:]
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	reply, err := s.generator.TutorReply(ctx, subject, grade, message, history)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = domain.ErrMalformedContent
	}
	if err != nil {
		s.log.Warn("tutor reply failed, serving fallback", "subject", subject, "error", err)
		return content.FallbackTutorReply(subject)
	}
	return strings.TrimSpace(reply)
}

// AnalyzeSession derives up to five weak topics from wrong answers.
func (s *ContentService) AnalyzeSession(ctx context.Context, subject, grade string, wrongAnswers []string) []string {
	if len(wrongAnswers) == 0 {
		return []string{}
	}
	subject, grade = orDefault(subject, domain.DefaultSubject), orDefault(grade, domain.DefaultGrade)
	if len(wrongAnswers) > maxWrongAnswers {
		wrongAnswers = wrongAnswers[:maxWrongAnswers]
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	topics, err := s.generator.WeakTopics(ctx, subject, grade, wrongAnswers)
	if err != nil {
		s.log.Warn("session analysis failed", "subject", subject, "error", err)
		return []string{}
	}
	if len(topics) > maxWeakTopics {
		topics = topics[:maxWeakTopics]
	}
	if topics == nil {
		topics = []string{}
	}
	return topics
}

// ClassInsight summarizes a class for its teacher.
func (s *ContentService) ClassInsight(ctx context.Context, students []domain.StudentStats) string {
	if len(students) == 0 {
		return content.NoStudentsInsight
	}
	if len(students) > maxStudents {
		students = students[:maxStudents]
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	insight, err := s.generator.ClassInsight(ctx, students)
	if err == nil && strings.TrimSpace(insight) == "" {
		err = domain.ErrMalformedContent
	}
	if err != nil {
		s.log.Warn("class insight failed, serving fallback", "error", err)
		return content.FallbackInsight
	}
	return insight
}

func (s *ContentService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
