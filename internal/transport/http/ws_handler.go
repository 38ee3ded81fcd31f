package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"educraft-session-service/internal/app"
	"educraft-session-service/internal/domain"
	"github.com/gorilla/websocket"
)

const sendBuffer = 32

type WSHandler struct {
	rooms    *app.RoomService
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(rooms *app.RoomService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		rooms: rooms,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

type answerPayload struct {
	Correct bool `json:"correct"`
}

type answerResult struct {
	PlayerID     string `json:"user_id"`
	Correct      bool   `json:"correct"`
	Score        int    `json:"score"`
	Total        int    `json:"total"`
	CorrectCount int    `json:"correct_count"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// wsSession is the per-connection state. Only the reader goroutine touches
// its fields; outbound frames all go through send.
type wsSession struct {
	h    *WSHandler
	ctx  context.Context
	send chan outboundMessage[any]

	roomID   string
	playerID string
	cancel   func()
	relayed  chan struct{}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the room use cases.
// A connection may join one room at a time; roomId, playerId and name in the
// query string join on connect.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s := &wsSession{h: h, ctx: r.Context(), send: make(chan outboundMessage[any], sendBuffer)}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range s.send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "error", err)
				failed = true
				// Unblocks the reader so the session winds down.
				_ = conn.Close()
			}
		}
	}()

	q := r.URL.Query()
	if q.Get("roomId") != "" || q.Get("playerId") != "" {
		s.join(joinPayload{RoomID: q.Get("roomId"), PlayerID: q.Get("playerId"), Username: q.Get("name")})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		s.handle(inbound)
	}

	s.leave()
	close(s.send)
	<-writerDone
}

func (s *wsSession) handle(inbound inboundMessage) {
	switch inbound.Type {
	case "join":
		var payload joinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			s.fail("invalid join payload")
			return
		}
		s.join(payload)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			s.fail("invalid answer payload")
			return
		}
		s.answer(payload.Correct)
	case "leave":
		if s.roomID == "" {
			s.fail(domain.ErrNotInRoom.Error())
			return
		}
		s.leave()
	default:
		s.fail("unsupported message type")
	}
}

func (s *wsSession) join(p joinPayload) {
	if s.roomID != "" && s.roomID != p.RoomID {
		s.fail(domain.ErrAlreadyInRoom.Error())
		return
	}
	fresh := s.roomID == ""
	var (
		events <-chan domain.RoomEvent
		cancel func()
	)
	if fresh {
		var err error
		events, cancel, err = s.h.rooms.Subscribe(s.ctx, p.RoomID)
		if err != nil {
			s.fail(err.Error())
			return
		}
	} else if p.PlayerID != s.playerID {
		s.h.rooms.Leave(s.ctx, s.roomID, s.playerID)
	}

	snap, err := s.h.rooms.Join(s.ctx, p.RoomID, p.PlayerID, p.Username)
	if err != nil {
		if fresh {
			cancel()
		}
		s.fail(err.Error())
		return
	}
	s.send <- outboundMessage[any]{Type: "joined", Payload: snap}
	if !fresh {
		s.playerID = p.PlayerID
		return
	}
	// Events queued by the join are relayed after "joined".
	s.roomID, s.playerID, s.cancel = p.RoomID, p.PlayerID, cancel
	s.relayed = make(chan struct{})
	go s.relay(events, s.relayed)
}

func (s *wsSession) relay(events <-chan domain.RoomEvent, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		s.send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev.Payload}
	}
}

func (s *wsSession) answer(correct bool) {
	if s.roomID == "" {
		s.fail(domain.ErrNotInRoom.Error())
		return
	}
	state, ok := s.h.rooms.RecordAnswer(s.ctx, s.roomID, s.playerID, correct)
	if !ok {
		return
	}
	s.send <- outboundMessage[any]{Type: "answer_result", Payload: answerResult{
		PlayerID:     s.playerID,
		Correct:      correct,
		Score:        state.Score,
		Total:        state.Total,
		CorrectCount: state.Correct,
	}}
}

// leave removes the player and stops relaying room events. It waits for the
// relay goroutine so nothing is sent after the session is torn down.
func (s *wsSession) leave() {
	if s.roomID == "" {
		return
	}
	// Leave uses a fresh context: the request context is already done on disconnect.
	s.h.rooms.Leave(context.WithoutCancel(s.ctx), s.roomID, s.playerID)
	s.cancel()
	<-s.relayed
	s.roomID, s.playerID, s.cancel, s.relayed = "", "", nil, nil
}

func (s *wsSession) fail(msg string) {
	s.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
