package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestDedupCacheUsesSets(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	cache := NewDedupCache(newClient(mr), time.Hour)

	claimed, err := cache.Claim(ctx, "u1|subj:Math", "fp1")
	if err != nil || !claimed {
		t.Fatalf("expected first claim to win, got %v %v", claimed, err)
	}
	claimed, err = cache.Claim(ctx, "u1|subj:Math", "fp1")
	if err != nil || claimed {
		t.Fatalf("expected repeat claim to lose, got %v %v", claimed, err)
	}
	if ok, _ := mr.SIsMember("dedup:u1|subj:Math", "fp1"); !ok {
		t.Fatalf("expected fingerprint in redis set")
	}
	if mr.TTL("dedup:u1|subj:Math") <= 0 {
		t.Fatalf("expected history ttl to be set")
	}

	if ok, _ := cache.Contains(ctx, "u1|subj:Math", "fp1"); !ok {
		t.Fatalf("expected contains to see fp1")
	}
	if err := cache.Record(ctx, "u1|subj:Math", "fp2"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if n, _ := cache.Size(ctx, "u1|subj:Math"); n != 2 {
		t.Fatalf("expected 2 fingerprints, got %d", n)
	}

	if err := cache.Reset(ctx, "u1|subj:Math"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.Exists("dedup:u1|subj:Math") {
		t.Fatalf("expected history key removed")
	}
}

func TestDedupCacheReportsBackendErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	cache := NewDedupCache(newClient(mr), 0)
	mr.Close()

	if _, err := cache.Claim(context.Background(), "k", "fp"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestDedupCacheWithoutTTLKeepsHistory(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	cache := NewDedupCache(newClient(mr), 0)
	if _, err := cache.Claim(ctx, "u1", "fp1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if mr.TTL("dedup:u1") != 0 {
		t.Fatalf("expected no expiry on history")
	}
	mr.FastForward(48 * time.Hour)
	if ok, _ := cache.Contains(ctx, "u1", "fp1"); !ok {
		t.Fatalf("expected history to survive without a ttl")
	}
}
