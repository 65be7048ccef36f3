package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/hearth/internal/keeper"
)

// Server is the hearth console API. It binds to loopback and exposes
// the soul to the CLI and the watch screen.
type Server struct {
	keeper  *keeper.Keeper
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server around a keeper.
func New(k *keeper.Keeper, version string) *Server {
	s := &Server{
		keeper:  k,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Post("/care", s.handleCare)
		r.Post("/chat", s.handleChat)
		r.Post("/sync", s.handleSync)
		r.Post("/reset", s.handleReset)

		r.Get("/personas", s.handlePersonas)
		r.Post("/personas", s.handleChoosePersona)

		r.Get("/queue", s.handleQueue)
		r.Get("/history/care", s.handleCareHistory)
		r.Get("/history/chats", s.handleChatHistory)
		r.Get("/history/review", s.handleReviewHistory)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.keeper.DB.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.keeper.DB.Path,
	})
}
