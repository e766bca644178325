package handler

import (
	"net/http"
)

// ConnectionChecker reports whether an optional dependency is connected.
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	tap ConnectionChecker
}

// NewHealthHandler creates a new health handler. tap may be nil when the
// response tap is disabled.
func NewHealthHandler(tap ConnectionChecker) *HealthHandler {
	return &HealthHandler{
		tap: tap,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy"})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.tap != nil && !h.tap.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status: "not ready",
			Reason: "response tap not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}
