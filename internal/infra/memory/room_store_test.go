package memory

import (
	"context"
	"testing"
	"time"

	"educraft-session-service/internal/app"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()

	room := store.GetOrCreate("room-1")
	if room == nil {
		t.Fatalf("expected room")
	}
	if again := store.GetOrCreate("room-1"); again != room {
		t.Fatalf("expected the same room instance")
	}
	if _, ok := store.Get("room-1"); !ok {
		t.Fatalf("expected room present")
	}

	if store.DeleteIfIdle("room-1", time.Now().Add(-time.Hour)) {
		t.Fatalf("recently active room must not be reaped")
	}
	if !store.DeleteIfIdle("room-1", time.Now().Add(time.Hour)) {
		t.Fatalf("expected idle room to be reaped")
	}
	if _, ok := store.Get("room-1"); ok {
		t.Fatalf("expected room removed")
	}
}

func TestRoomStoreKeepsOccupiedRooms(t *testing.T) {
	store := NewRoomStore()
	service := app.NewRoomService(store, nil)

	if _, err := service.Join(context.Background(), "room-1", "p1", "Ann"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if store.DeleteIfIdle("room-1", time.Now().Add(time.Hour)) {
		t.Fatalf("room with players must not be reaped")
	}

	service.Leave(context.Background(), "room-1", "p1")
	if _, ok := store.Get("room-1"); !ok {
		t.Fatalf("leave must not destroy the room")
	}
	if len(store.IDs()) != 1 {
		t.Fatalf("expected one room id, got %v", store.IDs())
	}
}
