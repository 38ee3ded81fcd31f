package redis

import (
	"context"
	"sync"
	"time"

	"educraft-session-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - Room state and broadcast stay in-process; rooms are not sharded across nodes.
//   - Redis holds a liveness marker per room (room:live:{id}) with a TTL so
//     operators and other services can see which rooms this node serves.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) GetOrCreate(roomID string) *app.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[roomID]; ok {
		// best-effort liveness refresh
		_ = s.client.Expire(context.Background(), s.key(roomID), s.ttl).Err()
		return room
	}
	room := app.NewRoom(roomID)
	s.rooms[roomID] = room
	_ = s.client.Set(context.Background(), s.key(roomID), "1", s.ttl).Err()
	return room
}

func (s *RoomStore) Get(roomID string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *RoomStore) DeleteIfIdle(roomID string, cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	if !room.RetireIfIdle(cutoff) {
		// Still in use; keep the marker alive between reaper passes.
		_ = s.client.Expire(context.Background(), s.key(roomID), s.ttl).Err()
		return false
	}
	delete(s.rooms, roomID)
	_ = s.client.Del(context.Background(), s.key(roomID)).Err()
	return true
}

func (s *RoomStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (s *RoomStore) key(roomID string) string {
	return "room:live:" + roomID
}
