// Package server provides the HTTP server: health, live MJPEG preview,
// result websocket and session history.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/vision"
)

// Feed is the source of live snapshots. *app.App satisfies it.
type Feed interface {
	Latest() (app.Snapshot, bool)
	Subscribe(fn func(app.Snapshot))
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Feed      Feed
	// Params, when set, is reported at /api/params.
	Params *vision.Params
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Params != nil {
		s.mux.Handle("/api/params", api.NewParamsHandler(*s.config.Params))
	}

	if s.config.Feed != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Feed))
		s.mux.Handle("/api/results", NewResultsHandler(s.config.Feed))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Feed != nil {
		if snap, ok := s.config.Feed.Latest(); ok {
			response["frames"] = snap.Seq + 1
			response["gesture"] = snap.Result.Gesture.String()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
