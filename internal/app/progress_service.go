package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"educraft-session-service/internal/domain"
	"github.com/google/uuid"
)

// CompletionStore persists completion records keyed by Completion.StorageKey.
type CompletionStore interface {
	// Upsert replaces any record stored under the same key.
	Upsert(ctx context.Context, c domain.Completion) error
	ListByUser(ctx context.Context, userID string) ([]domain.Completion, error)
}

// SyllabusRepository resolves syllabus metadata (chapter lists).
type SyllabusRepository interface {
	GetSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error)
}

// ProgressService records completions and aggregates progress views.
type ProgressService struct {
	completions CompletionStore
	syllabi     SyllabusRepository
	now         func() time.Time
	newID       func() string
	log         *slog.Logger
}

func NewProgressService(completions CompletionStore, syllabi SyllabusRepository, logger *slog.Logger) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{
		completions: completions,
		syllabi:     syllabi,
		now:         time.Now,
		newID:       uuid.NewString,
		log:         logger,
	}
}

// NewProgressServiceWithClock is test-only for deterministic timestamps.
func NewProgressServiceWithClock(completions CompletionStore, syllabi SyllabusRepository, now func() time.Time) *ProgressService {
	s := NewProgressService(completions, syllabi, nil)
	s.now = now
	return s
}

// RecordCompletion stores a completion, replacing the previous one for the same key.
func (s *ProgressService) RecordCompletion(ctx context.Context, in domain.CompletionInput) (domain.Completion, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Completion{}, err
	}

	c := domain.Completion{
		ID:             s.newID(),
		UserID:         in.UserID,
		SyllabusID:     in.SyllabusID,
		ChapterID:      in.ChapterID,
		ChapterTitle:   in.ChapterTitle,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		CorrectAnswers: in.CorrectAnswers,
		Accuracy:       in.Accuracy,
		TimeTaken:      in.TimeTaken,
		Mode:           in.Mode,
		Subject:        in.Subject,
		Grade:          in.Grade,
		CompletedAt:    s.now().UTC(),
	}
	if err := s.completions.Upsert(ctx, c); err != nil {
		return domain.Completion{}, fmt.Errorf("record completion: %w", err)
	}
	s.log.Info("chapter completed", "user", c.UserID, "key", c.StorageKey(), "score", c.Score)
	return c, nil
}

// GetProgress aggregates a user's completions, optionally restricted to one subject.
func (s *ProgressService) GetProgress(ctx context.Context, userID, subject string) (domain.ProgressView, error) {
	if userID == "" {
		userID = domain.DefaultUserID
	}
	all, err := s.completions.ListByUser(ctx, userID)
	if err != nil {
		return domain.ProgressView{}, fmt.Errorf("list completions: %w", err)
	}

	view := domain.ProgressView{
		SyllabusProgress: make(map[string][]domain.ChapterSummary),
		DefaultProgress:  make(map[string]domain.SubjectSummary),
	}
	accuracySums := make(map[string]float64)
	for _, c := range all {
		if subject != "" && c.Subject != subject {
			continue
		}
		view.TotalCompletions++
		if c.SyllabusScoped() {
			view.SyllabusProgress[c.SyllabusID] = append(view.SyllabusProgress[c.SyllabusID], summarize(c))
			continue
		}
		key := c.Subject + "_" + c.Grade
		agg := view.DefaultProgress[key]
		agg.Subject = c.Subject
		agg.Grade = c.Grade
		agg.TotalScore += c.Score
		agg.Sessions++
		accuracySums[key] += c.Accuracy
		view.DefaultProgress[key] = agg
	}
	for key, agg := range view.DefaultProgress {
		agg.Accuracy = accuracySums[key] / float64(agg.Sessions)
		view.DefaultProgress[key] = agg
	}
	for _, chapters := range view.SyllabusProgress {
		sortChapters(chapters)
	}
	return view, nil
}

// GetChapterProgress lists the completed chapters of one syllabus.
func (s *ProgressService) GetChapterProgress(ctx context.Context, userID, syllabusID string) (domain.ChapterProgress, error) {
	progress := domain.ChapterProgress{CompletedChapters: []domain.ChapterSummary{}}
	if syllabusID == "" {
		return progress, nil
	}
	if userID == "" {
		userID = domain.DefaultUserID
	}

	all, err := s.completions.ListByUser(ctx, userID)
	if err != nil {
		return domain.ChapterProgress{}, fmt.Errorf("list completions: %w", err)
	}
	for _, c := range all {
		if c.SyllabusID == syllabusID {
			progress.CompletedChapters = append(progress.CompletedChapters, summarize(c))
		}
	}
	sortChapters(progress.CompletedChapters)

	syllabus, err := s.syllabi.GetSyllabus(ctx, syllabusID)
	switch {
	case err == nil:
		progress.TotalChapters = len(syllabus.Chapters)
	case errors.Is(err, domain.ErrSyllabusNotFound):
	default:
		// Chapter totals are informational; a lookup failure degrades to 0.
		s.log.Warn("syllabus lookup failed", "syllabus", syllabusID, "error", err)
	}
	return progress, nil
}

func summarize(c domain.Completion) domain.ChapterSummary {
	return domain.ChapterSummary{
		ChapterID:    c.ChapterID,
		ChapterTitle: c.ChapterTitle,
		Accuracy:     c.Accuracy,
		Score:        c.Score,
	}
}

func sortChapters(chapters []domain.ChapterSummary) {
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].ChapterID < chapters[j].ChapterID
	})
}
