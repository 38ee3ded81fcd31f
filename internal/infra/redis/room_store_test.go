package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRoomStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRoomStore(client, time.Minute)

	_ = store.GetOrCreate("ABCD")
	if !mr.Exists("room:live:ABCD") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("room:live:ABCD"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected marker ttl within a minute, got %v", ttl)
	}

	if store.DeleteIfIdle("ABCD", time.Now().Add(-time.Hour)) {
		t.Fatalf("fresh room must not be reaped")
	}
	if !store.DeleteIfIdle("ABCD", time.Now().Add(time.Hour)) {
		t.Fatalf("expected idle room to be reaped")
	}
	if mr.Exists("room:live:ABCD") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("ABCD"); ok {
		t.Fatalf("expected room removed from store")
	}
}
