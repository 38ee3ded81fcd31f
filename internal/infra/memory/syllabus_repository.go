package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"educraft-session-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// missTTL bounds how long an unknown syllabus id is remembered, so a syllabus
// saved after a failed lookup shows up quickly.
const missTTL = 30 * time.Second

// SyllabusRepository fronts a SyllabusLoader with an in-process cache.
// Found syllabi live for ttl plus jitter; not-found answers are cached too,
// so progress reads for deleted syllabi do not hit the loader every time.
type SyllabusRepository struct {
	loader SyllabusLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group

	mu      sync.RWMutex
	entries map[string]syllabusEntry
}

type syllabusEntry struct {
	syllabus  domain.Syllabus
	missing   bool
	expiresAt time.Time
}

func NewSyllabusRepository(loader SyllabusLoader, ttl time.Duration) *SyllabusRepository {
	return &SyllabusRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]syllabusEntry),
	}
}

func (r *SyllabusRepository) GetSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error) {
	if e, ok := r.entry(syllabusID); ok {
		return e.result()
	}

	v, err, _ := r.loads.Do(syllabusID, func() (interface{}, error) {
		if e, ok := r.entry(syllabusID); ok {
			return e, nil
		}
		s, err := r.loader.LoadSyllabus(ctx, syllabusID)
		switch {
		case errors.Is(err, domain.ErrSyllabusNotFound):
			return r.store(syllabusID, syllabusEntry{missing: true, expiresAt: r.clock().Add(r.missTTL())}), nil
		case err != nil:
			return nil, err
		}
		return r.store(syllabusID, syllabusEntry{syllabus: s, expiresAt: r.clock().Add(r.ttlWithJitter())}), nil
	})
	if err != nil {
		return domain.Syllabus{}, err
	}
	return v.(syllabusEntry).result()
}

// ListSyllabi reads through to the loader; listings are not cached.
func (r *SyllabusRepository) ListSyllabi(ctx context.Context, userID string) ([]domain.Syllabus, error) {
	return r.loader.ListSyllabi(ctx, userID)
}

// Invalidate drops the cached entry for syllabusID.
func (r *SyllabusRepository) Invalidate(syllabusID string) {
	r.mu.Lock()
	delete(r.entries, syllabusID)
	r.mu.Unlock()
}

func (r *SyllabusRepository) entry(syllabusID string) (syllabusEntry, bool) {
	r.mu.RLock()
	e, ok := r.entries[syllabusID]
	r.mu.RUnlock()
	if !ok || !e.expiresAt.After(r.clock()) {
		return syllabusEntry{}, false
	}
	return e, true
}

func (r *SyllabusRepository) store(syllabusID string, e syllabusEntry) syllabusEntry {
	if r.ttl <= 0 {
		return e
	}
	r.mu.Lock()
	r.entries[syllabusID] = e
	r.mu.Unlock()
	return e
}

func (e syllabusEntry) result() (domain.Syllabus, error) {
	if e.missing {
		return domain.Syllabus{}, domain.ErrSyllabusNotFound
	}
	return e.syllabus, nil
}

func (r *SyllabusRepository) missTTL() time.Duration {
	if r.ttl < missTTL {
		return r.ttl
	}
	return missTTL
}

func (r *SyllabusRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitter := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitter+1))
}
