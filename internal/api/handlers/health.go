package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amaumene/repertoire/internal/models"
	"github.com/sirupsen/logrus"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	sessions models.SessionStore
	logger   *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sessions models.SessionStore, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{sessions: sessions, logger: logger}
}

// HealthResponse represents the health response
type HealthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// ServeHTTP reports liveness and whether a session is stored. A broken
// session store answers 503.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{Status: "healthy"}
	code := http.StatusOK

	_, err := h.sessions.Get()
	switch {
	case err == nil:
		response.Authenticated = true
	case errors.Is(err, models.ErrNoSession):
	default:
		h.logger.WithError(err).Error("Failed to read session")
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}
