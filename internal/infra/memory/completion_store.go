package memory

import (
	"context"
	"sync"

	"educraft-session-service/internal/domain"
)

// CompletionStore keeps the latest completion per storage key. sync.Map lets
// writes to different keys proceed without a shared lock.
type CompletionStore struct {
	byKey sync.Map // storage key -> domain.Completion
}

func NewCompletionStore() *CompletionStore {
	return &CompletionStore{}
}

func (s *CompletionStore) Upsert(_ context.Context, c domain.Completion) error {
	s.byKey.Store(c.StorageKey(), c)
	return nil
}

func (s *CompletionStore) ListByUser(_ context.Context, userID string) ([]domain.Completion, error) {
	var out []domain.Completion
	s.byKey.Range(func(_, v any) bool {
		if c := v.(domain.Completion); c.UserID == userID {
			out = append(out, c)
		}
		return true
	})
	return out, nil
}
