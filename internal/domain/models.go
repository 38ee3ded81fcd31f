package domain

import "time"

// CorrectAnswerReward is the score awarded per correct answer, regardless of difficulty.
const CorrectAnswerReward = 10

// PlayerState represents a room participant and their running counters.
type PlayerState struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
}

// RoomSnapshot is a copy of a room's roster and leaderboard at one point in time.
type RoomSnapshot struct {
	RoomID  string                 `json:"room_id"`
	Players map[string]PlayerState `json:"players"`
	Scores  map[string]int         `json:"scores"`
}

// RoomEventType names the outbound events published to room subscribers.
type RoomEventType string

const (
	EventPlayerJoined RoomEventType = "player_joined"
	EventPlayerLeft   RoomEventType = "player_left"
	EventLeaderboard  RoomEventType = "leaderboard_update"
)

// RoomEvent is a single message on a room topic. Payload is one of
// RosterUpdate, PlayerLeft or LeaderboardUpdate.
type RoomEvent struct {
	Type    RoomEventType `json:"type"`
	Payload any           `json:"payload"`
}

// RosterUpdate is published when a player joins or re-joins.
type RosterUpdate struct {
	PlayerID string                 `json:"user_id"`
	Username string                 `json:"username"`
	Players  map[string]PlayerState `json:"players"`
}

// PlayerLeft is published when a player leaves a room.
type PlayerLeft struct {
	PlayerID string `json:"user_id"`
}

// LeaderboardUpdate maps player id to score.
type LeaderboardUpdate struct {
	RoomID string         `json:"room_id"`
	Scores map[string]int `json:"scores"`
}

// Chapter is a single entry of a syllabus.
type Chapter struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Syllabus is an uploaded course outline; only the chapter list matters here.
type Syllabus struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Grade     string    `json:"grade"`
	Filename  string    `json:"filename"`
	Chapters  []Chapter `json:"chapters"`
	CreatedAt time.Time `json:"created_at"`
}

// World is the themed game world generated per subject.
type World struct {
	WorldName        string   `json:"world_name"`
	BiomeDescription string   `json:"biome_description"`
	Enemies          []string `json:"enemies"`
	Resources        []string `json:"resources"`
	QuestTitle       string   `json:"quest_title"`
	QuestDescription string   `json:"quest_description"`
}

// Valid reports whether a generated world carries the fields the client renders.
func (w World) Valid() bool {
	return w.WorldName != "" && w.QuestTitle != "" && len(w.Enemies) > 0 && len(w.Resources) > 0
}

// TutorMessage is one turn of a tutor conversation.
type TutorMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StudentStats summarizes one student for class insight generation.
type StudentStats struct {
	Name         string         `json:"name"`
	SubjectStats map[string]any `json:"subject_stats"`
	WeakTopics   []string       `json:"weak_topics"`
}
