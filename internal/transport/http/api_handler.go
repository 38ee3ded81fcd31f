package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"educraft-session-service/internal/app"
	"educraft-session-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// SyllabusReader is the read side of the syllabus store.
type SyllabusReader interface {
	GetSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error)
	ListSyllabi(ctx context.Context, userID string) ([]domain.Syllabus, error)
}

// APIHandler serves the JSON endpoints. Content endpoints always answer 200
// with generated or fallback content; only malformed input is rejected.
type APIHandler struct {
	arbiter  *app.Arbiter
	content  *app.ContentService
	progress *app.ProgressService
	rooms    *app.RoomService
	syllabi  SyllabusReader
	log      *slog.Logger
}

func NewAPIHandler(
	arbiter *app.Arbiter,
	content *app.ContentService,
	progress *app.ProgressService,
	rooms *app.RoomService,
	syllabi SyllabusReader,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		arbiter:  arbiter,
		content:  content,
		progress: progress,
		rooms:    rooms,
		syllabi:  syllabi,
		log:      logger,
	}
}

func (h *APIHandler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.fillChapterContent(r.Context(), &req)

	q, err := h.arbiter.GenerateQuestion(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// fillChapterContent loads chapter text for syllabus-scoped requests that did
// not send it. Lookup failures leave the request unchanged.
func (h *APIHandler) fillChapterContent(ctx context.Context, req *domain.GenerationRequest) {
	if h.syllabi == nil || req.ChapterContent != "" || strings.TrimSpace(req.SyllabusID) == "" || req.ChapterID <= 0 {
		return
	}
	s, err := h.syllabi.GetSyllabus(ctx, strings.TrimSpace(req.SyllabusID))
	if err != nil {
		h.log.Debug("chapter content lookup failed", "syllabus_id", req.SyllabusID, "error", err)
		return
	}
	for _, ch := range s.Chapters {
		if ch.ID == req.ChapterID {
			req.ChapterContent = ch.Content
			return
		}
	}
}

type subjectRequest struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
}

func (h *APIHandler) GenerateWorld(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.content.World(r.Context(), req.Subject, req.Grade))
}

type tutorRequest struct {
	Subject     string                `json:"subject"`
	Grade       string                `json:"grade"`
	Message     string                `json:"message"`
	ChatHistory []domain.TutorMessage `json:"chat_history"`
}

func (h *APIHandler) TutorChat(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply := h.content.Tutor(r.Context(), req.Subject, req.Grade, req.Message, req.ChatHistory)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

type analyzeRequest struct {
	Subject      string   `json:"subject"`
	Grade        string   `json:"grade"`
	WrongAnswers []string `json:"wrong_answers"`
}

func (h *APIHandler) AnalyzeSession(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	topics := h.content.AnalyzeSession(r.Context(), req.Subject, req.Grade, req.WrongAnswers)
	writeJSON(w, http.StatusOK, map[string][]string{"weak_topics": topics})
}

type insightRequest struct {
	Students []domain.StudentStats `json:"students"`
}

func (h *APIHandler) ClassInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if !h.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insight": h.content.ClassInsight(r.Context(), req.Students)})
}

type completionResponse struct {
	Success     bool              `json:"success"`
	Completion  domain.Completion `json:"completion"`
	NextChapter *int              `json:"next_chapter"`
}

func (h *APIHandler) CompleteChapter(w http.ResponseWriter, r *http.Request) {
	var in domain.CompletionInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.progress.RecordCompletion(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := completionResponse{Success: true, Completion: c}
	if c.ChapterID > 0 {
		next := c.ChapterID + 1
		resp.NextChapter = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	view, err := h.progress.GetProgress(r.Context(), userParam(r), r.URL.Query().Get("subject"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) GetChapterProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.progress.GetChapterProgress(r.Context(), userParam(r), r.URL.Query().Get("syllabus_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *APIHandler) GetChapters(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("syllabus_id"))
	if id == "" || h.syllabi == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"chapters": []domain.Chapter{}, "error": domain.ErrSyllabusNotFound.Error()})
		return
	}
	s, err := h.syllabi.GetSyllabus(r.Context(), id)
	if errors.Is(err, domain.ErrSyllabusNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"chapters": []domain.Chapter{}, "error": err.Error()})
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *APIHandler) GetSyllabusList(w http.ResponseWriter, r *http.Request) {
	list := []domain.Syllabus{}
	if h.syllabi != nil {
		var err error
		if list, err = h.syllabi.ListSyllabi(r.Context(), userParam(r)); err != nil {
			h.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Syllabus{"syllabi": list})
}

func (h *APIHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.rooms.Snapshot(r.Context(), chi.URLParam(r, "roomID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid JSON body"})
		return false
	}
	return true
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "error", err)
		writeJSON(w, status, errorPayload{Message: "internal error"})
		return
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func userParam(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user_id")); u != "" {
		return u
	}
	return domain.DefaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

