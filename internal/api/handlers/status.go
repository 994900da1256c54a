package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amaumene/repertoire/internal/models"
	"github.com/sirupsen/logrus"
)

// EntrySource exposes the list currently shown
type EntrySource interface {
	Entries() []models.Entry
	Query() string
}

// StatusHandler handles status requests
type StatusHandler struct {
	source EntrySource
	now    func() time.Time
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(source EntrySource, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		source: source,
		now:    time.Now,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Query         string         `json:"query"`
	TotalEntries  int            `json:"total_entries"`
	CurrentYear   int            `json:"current_year"`
	EntriesByKind map[string]int `json:"entries_by_kind"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := h.source.Entries()
	now := h.now()

	response := StatusResponse{
		Query:         h.source.Query(),
		TotalEntries:  len(entries),
		EntriesByKind: make(map[string]int),
	}

	for i := range entries {
		response.EntriesByKind[string(entries[i].Kind)]++
		if entries[i].IsCurrentYear(now) {
			response.CurrentYear++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode status")
	}
}
