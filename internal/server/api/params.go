package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/vision"
)

// ParamsHandler reports the thresholds the analyzer is running with, in
// the same shape as a tuning file.
type ParamsHandler struct {
	params vision.Params
}

// NewParamsHandler creates a new ParamsHandler for p.
func NewParamsHandler(p vision.Params) *ParamsHandler {
	return &ParamsHandler{params: p}
}

// ServeHTTP handles GET /api/params.
func (h *ParamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, config.FromParams(h.params))
}
