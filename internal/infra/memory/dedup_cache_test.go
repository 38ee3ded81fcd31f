package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDedupCacheLifecycle(t *testing.T) {
	ctx := context.Background()
	cache := NewDedupCache()

	if ok, _ := cache.Contains(ctx, "u1", "fp1"); ok {
		t.Fatalf("expected empty history")
	}
	if err := cache.Record(ctx, "u1", "fp1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if ok, _ := cache.Contains(ctx, "u1", "fp1"); !ok {
		t.Fatalf("expected fp1 recorded")
	}
	if ok, _ := cache.Contains(ctx, "u2", "fp1"); ok {
		t.Fatalf("histories must be isolated per key")
	}

	if claimed, _ := cache.Claim(ctx, "u1", "fp1"); claimed {
		t.Fatalf("seen fingerprint must not be claimable")
	}
	if claimed, _ := cache.Claim(ctx, "u1", "fp2"); !claimed {
		t.Fatalf("expected fp2 claim to succeed")
	}

	if err := cache.Reset(ctx, "u1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := cache.Size(ctx, "u1"); n != 0 {
		t.Fatalf("expected empty history after reset, got %d", n)
	}
}

func TestDedupCacheClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	cache := NewDedupCache()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := cache.Claim(ctx, "u1", "same"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one claim to win, got %d", wins)
	}
}

func TestDedupCacheReadsDoNotCreateHistories(t *testing.T) {
	ctx := context.Background()
	cache := NewDedupCache()

	if ok, _ := cache.Contains(ctx, "ghost", "fp1"); ok {
		t.Fatalf("expected unknown key to be empty")
	}
	if n, _ := cache.Size(ctx, "ghost"); n != 0 {
		t.Fatalf("expected zero size, got %d", n)
	}
	if err := cache.Reset(ctx, "ghost"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := cache.histories.Load("ghost"); ok {
		t.Fatalf("reads must not create a history")
	}
}
