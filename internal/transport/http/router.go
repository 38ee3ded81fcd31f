package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the websocket endpoint, the JSON API and health checks.
func NewRouter(api *APIHandler, ws *WSHandler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-question", api.GenerateQuestion)
		r.Post("/generate-world", api.GenerateWorld)
		r.Post("/tutor-chat", api.TutorChat)
		r.Post("/analyze-session", api.AnalyzeSession)
		r.Post("/class-insight", api.ClassInsight)
		r.Post("/complete-chapter", api.CompleteChapter)
		r.Get("/get-progress", api.GetProgress)
		r.Get("/get-chapter-progress", api.GetChapterProgress)
		r.Get("/get-chapters", api.GetChapters)
		r.Get("/get-syllabus-list", api.GetSyllabusList)
		r.Get("/rooms/{roomID}", api.GetRoom)
	})
	return r
}
