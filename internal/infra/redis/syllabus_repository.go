package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"educraft-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SyllabusLoader fetches syllabi from a backing store (e.g., Postgres).
type SyllabusLoader interface {
	LoadSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error)
	ListSyllabi(ctx context.Context, userID string) ([]domain.Syllabus, error)
}

// SyllabusRepository caches syllabi in Redis as JSON and falls back to a loader on cache miss.
// Entries are stored as: SET syllabus:{syllabusID} {json} EX ttl
type SyllabusRepository struct {
	client *redis.Client
	loader SyllabusLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewSyllabusRepository(client *redis.Client, loader SyllabusLoader, ttl time.Duration) *SyllabusRepository {
	return &SyllabusRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *SyllabusRepository) GetSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error) {
	if s, ok := r.cached(ctx, syllabusID); ok {
		return s, nil
	}

	result, err, _ := r.sf.Do(syllabusID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if s, ok := r.cached(ctx, syllabusID); ok {
			return s, nil
		}

		syllabus, err := r.loader.LoadSyllabus(ctx, syllabusID)
		if err != nil {
			return domain.Syllabus{}, err
		}

		if raw, err := json.Marshal(syllabus); err == nil {
			_ = r.client.Set(ctx, r.key(syllabusID), raw, r.ttlWithJitter()).Err()
		}
		return syllabus, nil
	})
	if err != nil {
		return domain.Syllabus{}, err
	}
	return result.(domain.Syllabus), nil
}

// ListSyllabi reads through to the loader. Only single syllabi are cached.
func (r *SyllabusRepository) ListSyllabi(ctx context.Context, userID string) ([]domain.Syllabus, error) {
	return r.loader.ListSyllabi(ctx, userID)
}

// Invalidate drops the cached copy so the next read goes to the loader.
func (r *SyllabusRepository) Invalidate(ctx context.Context, syllabusID string) error {
	return r.client.Del(ctx, r.key(syllabusID)).Err()
}

func (r *SyllabusRepository) cached(ctx context.Context, syllabusID string) (domain.Syllabus, bool) {
	raw, err := r.client.Get(ctx, r.key(syllabusID)).Bytes()
	if err != nil {
		return domain.Syllabus{}, false
	}
	var s domain.Syllabus
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Syllabus{}, false
	}
	return s, true
}

func (r *SyllabusRepository) key(syllabusID string) string {
	return "syllabus:" + syllabusID
}

func (r *SyllabusRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

