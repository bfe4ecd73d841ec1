// Package server exposes the Loom engine over HTTP: CRUD for records, each
// write followed by a linking pass, plus semantic search, the daily digest,
// and a websocket feed of link events.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/loomknot/loom/internal/config"
	"github.com/loomknot/loom/internal/engine"
	"github.com/loomknot/loom/internal/storage"
)

// Server is the HTTP front end.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	linker  *engine.Linker
	hub     *Hub
	limiter *rateLimiter
	mux     *http.ServeMux
}

// NewServer wires the HTTP surface over the given store and linker. The
// linker's event feed is connected to the websocket hub.
func NewServer(cfg *config.Config, store storage.Store, linker *engine.Linker) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		linker:  linker,
		hub:     NewHub(),
		limiter: newRateLimiter(10, 20),
		mux:     http.NewServeMux(),
	}
	linker.Notify = s.hub.Broadcast
	s.routes()
	return s
}

func (s *Server) routes() {
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimit(s.requireAuth(h))
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("POST /api/notes", protected(s.handleCreateNote))
	s.mux.HandleFunc("GET /api/notes/{id}", protected(s.handleGetNote))
	s.mux.HandleFunc("GET /api/notes", protected(s.handleListNotes))
	s.mux.HandleFunc("POST /api/notes/search", protected(s.handleSearchNotes))

	s.mux.HandleFunc("POST /api/people", protected(s.handleCreatePerson))
	s.mux.HandleFunc("GET /api/people/{id}", protected(s.handleGetPerson))

	s.mux.HandleFunc("POST /api/meetings", protected(s.handleCreateMeeting))
	s.mux.HandleFunc("GET /api/meetings/{id}", protected(s.handleGetMeeting))

	s.mux.HandleFunc("GET /api/reminders", protected(s.handleListReminders))
	s.mux.HandleFunc("GET /api/digest", protected(s.handleDigest))

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the routed handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	log.Printf("Server: listening on %s (security mode: %s)", addr, s.cfg.Security.Mode)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Server: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
