package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// SessionHandler serves recorded sessions and their detections.
//
//	GET    /api/sessions
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/detections
//	GET    /api/sessions/{id}/summary
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type listDetectionsResponse struct {
	Detections []*store.Detection `json:"detections"`
}

type summaryResponse struct {
	SessionID string         `json:"session_id"`
	Counts    map[string]int `json:"counts"`
	Changes   int            `json:"changes"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		Source:    s.Source,
		StartedAt: s.StartedAt.Format(timeLayout),
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.Format(timeLayout)
	}
	return resp
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		h.delete(w, r, id)
	case sub == "detections" && r.Method == http.MethodGet:
		h.detections(w, r, id)
	case sub == "summary" && r.Method == http.MethodGet:
		h.summary(w, r, id)
	case sub == "" || sub == "detections" || sub == "summary":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// lookup writes the error response and returns nil when the session cannot
// be loaded.
func (h *SessionHandler) lookup(w http.ResponseWriter, id string) *store.Session {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil
	}
	return sess
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if sess := h.lookup(w, id); sess != nil {
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// detections handles GET /api/sessions/{id}/detections.
func (h *SessionHandler) detections(w http.ResponseWriter, r *http.Request, id string) {
	if h.lookup(w, id) == nil {
		return
	}

	ds, err := h.store.Detections().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list detections")
		return
	}
	if ds == nil {
		ds = []*store.Detection{}
	}

	writeJSON(w, http.StatusOK, listDetectionsResponse{Detections: ds})
}

// summary handles GET /api/sessions/{id}/summary.
func (h *SessionHandler) summary(w http.ResponseWriter, r *http.Request, id string) {
	if h.lookup(w, id) == nil {
		return
	}

	counts, err := h.store.Detections().CountByGesture(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize session")
		return
	}

	changes := 0
	for _, n := range counts {
		changes += n
	}

	writeJSON(w, http.StatusOK, summaryResponse{SessionID: id, Counts: counts, Changes: changes})
}
