package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"educraft-session-service/internal/domain"
)

// subscriberBuffer is the per-subscriber event backlog before the oldest event is dropped.
const subscriberBuffer = 16

// RoomRepository abstracts where live rooms are kept (in-memory, Redis-marked, etc).
type RoomRepository interface {
	GetOrCreate(roomID string) *Room
	Get(roomID string) (*Room, bool)
	// DeleteIfIdle drops the room when it has no players, no subscribers and
	// no activity since cutoff. It reports whether the room was removed.
	DeleteIfIdle(roomID string, cutoff time.Time) bool
	IDs() []string
}

// RoomService is the sole mutator of room state. Each room serializes its own
// mutations and broadcasts; rooms never contend with each other.
type RoomService struct {
	rooms RoomRepository
	log   *slog.Logger
}

func NewRoomService(store RoomRepository, logger *slog.Logger) *RoomService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomService{rooms: store, log: logger}
}

// NewRoom is exported for infrastructure layers that need to seed rooms.
func NewRoom(id string) *Room {
	return newRoomWithClock(id, time.Now)
}

// NewRoomWithClock is test-only for deterministic idle tracking.
func NewRoomWithClock(id string, now func() time.Time) *Room {
	return newRoomWithClock(id, now)
}

// Join upserts a player into a room, creating the room on first use. A
// re-join resets the player's counters.
func (s *RoomService) Join(_ context.Context, roomID, playerID, username string) (domain.RoomSnapshot, error) {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(playerID) == "" {
		return domain.RoomSnapshot{}, fmt.Errorf("%w: room id and player id are required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(username) == "" {
		username = "Player"
	}
	for {
		room := s.rooms.GetOrCreate(roomID)
		if snap, ok := room.join(playerID, username); ok {
			s.log.Debug("player joined", "room", roomID, "player", playerID)
			return snap, nil
		}
		// Reaped between lookup and join; the next GetOrCreate yields a fresh room.
	}
}

// RecordAnswer applies one answer. Unknown rooms or players are ignored
// without a broadcast; ok reports whether the answer was applied.
func (s *RoomService) RecordAnswer(_ context.Context, roomID, playerID string, correct bool) (domain.PlayerState, bool) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		s.log.Debug("answer for unknown room ignored", "room", roomID, "player", playerID)
		return domain.PlayerState{}, false
	}
	state, ok := room.recordAnswer(playerID, correct)
	if !ok {
		s.log.Debug("answer for unknown player ignored", "room", roomID, "player", playerID)
	}
	return state, ok
}

// Leave removes a player. The room itself is kept even when it becomes empty.
func (s *RoomService) Leave(_ context.Context, roomID, playerID string) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return
	}
	if room.leave(playerID) {
		s.log.Debug("player left", "room", roomID, "player", playerID)
	}
}

// Subscribe returns a channel of room events. The caller must invoke the
// returned cancel function to avoid leaks; cancel closes the channel.
func (s *RoomService) Subscribe(_ context.Context, roomID string) (<-chan domain.RoomEvent, func(), error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, nil, fmt.Errorf("%w: room id is required", domain.ErrInvalidRequest)
	}
	for {
		room := s.rooms.GetOrCreate(roomID)
		if ch, cancel, ok := room.subscribe(subscriberBuffer); ok {
			return ch, cancel, nil
		}
	}
}

// Snapshot returns the current roster of a room.
func (s *RoomService) Snapshot(_ context.Context, roomID string) (domain.RoomSnapshot, bool) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	return room.Snapshot(), true
}

// ReapIdle removes rooms that have been empty and unwatched since cutoff.
func (s *RoomService) ReapIdle(cutoff time.Time) int {
	removed := 0
	for _, id := range s.rooms.IDs() {
		if s.rooms.DeleteIfIdle(id, cutoff) {
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("reaped idle rooms", "count", removed)
	}
	return removed
}

// Room is the in-memory state of one live room.
type Room struct {
	id          string
	now         func() time.Time
	mu          sync.RWMutex
	players     map[string]*domain.PlayerState
	subscribers map[chan domain.RoomEvent]struct{}
	lastActive  time.Time
	retired     bool
}

func newRoomWithClock(id string, now func() time.Time) *Room {
	return &Room{
		id:          id,
		now:         now,
		players:     make(map[string]*domain.PlayerState),
		subscribers: make(map[chan domain.RoomEvent]struct{}),
		lastActive:  now(),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

func (r *Room) join(playerID, username string) (domain.RoomSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return domain.RoomSnapshot{}, false
	}

	r.players[playerID] = &domain.PlayerState{Username: username}
	r.lastActive = r.now()

	r.publishLocked(domain.RoomEvent{
		Type: domain.EventPlayerJoined,
		Payload: domain.RosterUpdate{
			PlayerID: playerID,
			Username: username,
			Players:  r.rosterLocked(),
		},
	})
	r.publishLocked(r.leaderboardEventLocked())
	return r.snapshotLocked(), true
}

func (r *Room) recordAnswer(playerID string, correct bool) (domain.PlayerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return domain.PlayerState{}, false
	}
	player.Total++
	if correct {
		player.Score += domain.CorrectAnswerReward
		player.Correct++
	}
	r.lastActive = r.now()

	r.publishLocked(r.leaderboardEventLocked())
	return *player, true
}

func (r *Room) leave(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; !ok {
		return false
	}
	delete(r.players, playerID)
	r.lastActive = r.now()

	r.publishLocked(domain.RoomEvent{
		Type:    domain.EventPlayerLeft,
		Payload: domain.PlayerLeft{PlayerID: playerID},
	})
	return true
}

// Snapshot copies the roster and leaderboard.
func (r *Room) Snapshot() domain.RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// IsEmpty reports whether the room has no players.
func (r *Room) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players) == 0
}

// RetireIfIdle marks the room unusable when it has no players, no subscribers
// and no activity since cutoff. Retired rooms reject joins and subscriptions so
// callers re-resolve them from the repository.
func (r *Room) RetireIfIdle(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return true
	}
	if len(r.players) > 0 || len(r.subscribers) > 0 || !r.lastActive.Before(cutoff) {
		return false
	}
	r.retired = true
	return true
}

func (r *Room) subscribe(buffer int) (<-chan domain.RoomEvent, func(), bool) {
	ch := make(chan domain.RoomEvent, buffer)

	r.mu.Lock()
	if r.retired {
		r.mu.Unlock()
		return nil, nil, false
	}
	r.subscribers[ch] = struct{}{}
	r.lastActive = r.now()
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
			r.lastActive = r.now()
		}
		r.mu.Unlock()
	}
	return ch, cancel, true
}

// publishLocked fans an event out while the room lock is held, so subscribers
// see events in mutation order.
func (r *Room) publishLocked(ev domain.RoomEvent) {
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event instead of blocking the room.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (r *Room) leaderboardEventLocked() domain.RoomEvent {
	return domain.RoomEvent{
		Type:    domain.EventLeaderboard,
		Payload: domain.LeaderboardUpdate{RoomID: r.id, Scores: r.scoresLocked()},
	}
}

func (r *Room) rosterLocked() map[string]domain.PlayerState {
	roster := make(map[string]domain.PlayerState, len(r.players))
	for id, p := range r.players {
		roster[id] = *p
	}
	return roster
}

func (r *Room) scoresLocked() map[string]int {
	scores := make(map[string]int, len(r.players))
	for id, p := range r.players {
		scores[id] = p.Score
	}
	return scores
}

func (r *Room) snapshotLocked() domain.RoomSnapshot {
	return domain.RoomSnapshot{
		RoomID:  r.id,
		Players: r.rosterLocked(),
		Scores:  r.scoresLocked(),
	}
}
