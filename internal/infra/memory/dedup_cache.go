package memory

import (
	"context"
	"sync"
)

// DedupCache keeps per-session fingerprint histories in memory. Each session
// key owns its own lock; different keys never contend.
type DedupCache struct {
	histories sync.Map // session key -> *history
}

type history struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupCache() *DedupCache {
	return &DedupCache{}
}

func (c *DedupCache) history(key string) *history {
	if h, ok := c.histories.Load(key); ok {
		return h.(*history)
	}
	h, _ := c.histories.LoadOrStore(key, &history{seen: make(map[string]struct{})})
	return h.(*history)
}

// lookup returns the history for key without creating one.
func (c *DedupCache) lookup(key string) (*history, bool) {
	h, ok := c.histories.Load(key)
	if !ok {
		return nil, false
	}
	return h.(*history), true
}

func (c *DedupCache) Contains(_ context.Context, key, fingerprint string) (bool, error) {
	h, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok = h.seen[fingerprint]
	return ok, nil
}

func (c *DedupCache) Record(_ context.Context, key, fingerprint string) error {
	h := c.history(key)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[fingerprint] = struct{}{}
	return nil
}

// Claim records fingerprint and reports true only when it was not seen before.
func (c *DedupCache) Claim(_ context.Context, key, fingerprint string) (bool, error) {
	h := c.history(key)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seen[fingerprint]; ok {
		return false, nil
	}
	h.seen[fingerprint] = struct{}{}
	return true, nil
}

func (c *DedupCache) Reset(_ context.Context, key string) error {
	h, ok := c.lookup(key)
	if !ok {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = make(map[string]struct{})
	return nil
}

// Size returns the number of fingerprints recorded for key.
func (c *DedupCache) Size(_ context.Context, key string) (int, error) {
	h, ok := c.lookup(key)
	if !ok {
		return 0, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen), nil
}
