package memory

import (
	"context"
	"sort"

	"educraft-session-service/internal/domain"
)

// SyllabusLoader fetches syllabi from a backing store such as Postgres.
type SyllabusLoader interface {
	LoadSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error)
	ListSyllabi(ctx context.Context, userID string) ([]domain.Syllabus, error)
}

// StaticSyllabusLoader serves a fixed set of syllabi, for demos and tests.
type StaticSyllabusLoader struct {
	syllabi map[string]domain.Syllabus
}

func NewStaticSyllabusLoader(syllabi map[string]domain.Syllabus) *StaticSyllabusLoader {
	return &StaticSyllabusLoader{syllabi: syllabi}
}

func (l *StaticSyllabusLoader) LoadSyllabus(_ context.Context, syllabusID string) (domain.Syllabus, error) {
	if s, ok := l.syllabi[syllabusID]; ok {
		return s, nil
	}
	return domain.Syllabus{}, domain.ErrSyllabusNotFound
}

// ListSyllabi returns the user's syllabi ordered by id.
func (l *StaticSyllabusLoader) ListSyllabi(_ context.Context, userID string) ([]domain.Syllabus, error) {
	out := []domain.Syllabus{}
	for _, s := range l.syllabi {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
