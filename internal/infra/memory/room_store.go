package memory

import (
	"sync"
	"time"

	"educraft-session-service/internal/app"
)

// RoomStore is an in-memory implementation of app.RoomRepository. The store
// lock only guards the id index; room state is guarded by each room.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*app.Room),
	}
}

func (s *RoomStore) GetOrCreate(roomID string) *app.Room {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return room
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[roomID]; ok {
		return room
	}
	room = app.NewRoom(roomID)
	s.rooms[roomID] = room
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
		return false
	}
	delete(s.rooms, roomID)
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
