package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupCache stores each session history as a Redis set:
//
//	SADD dedup:{sessionKey} {fingerprint}
//
// SADD reports whether the member was new, which makes Claim a single atomic
// check-and-record per key without any client-side locking.
type DedupCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupCache builds a cache whose histories expire ttl after the last claim.
// A zero ttl keeps histories until reset.
func NewDedupCache(client *redis.Client, ttl time.Duration) *DedupCache {
	return &DedupCache{client: client, ttl: ttl}
}

func (c *DedupCache) Contains(ctx context.Context, key, fingerprint string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, c.key(key), fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("dedup contains: %w", err)
	}
	return ok, nil
}

func (c *DedupCache) Record(ctx context.Context, key, fingerprint string) error {
	_, err := c.add(ctx, key, fingerprint)
	return err
}

func (c *DedupCache) Claim(ctx context.Context, key, fingerprint string) (bool, error) {
	added, err := c.add(ctx, key, fingerprint)
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (c *DedupCache) Reset(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("dedup reset: %w", err)
	}
	return nil
}

func (c *DedupCache) Size(ctx context.Context, key string) (int, error) {
	n, err := c.client.SCard(ctx, c.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("dedup size: %w", err)
	}
	return int(n), nil
}

func (c *DedupCache) add(ctx context.Context, key, fingerprint string) (int64, error) {
	pipe := c.client.TxPipeline()
	added := pipe.SAdd(ctx, c.key(key), fingerprint)
	if c.ttl > 0 {
		pipe.Expire(ctx, c.key(key), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("dedup record: %w", err)
	}
	return added.Val(), nil
}

func (c *DedupCache) key(sessionKey string) string {
	return "dedup:" + sessionKey
}
