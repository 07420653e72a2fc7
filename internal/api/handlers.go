package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/maltedev/shop-scraper/internal/workflow"
)

// StatusSource exposes the live view of the running scrape.
type StatusSource interface {
	Status() workflow.Status
}

type Handlers struct {
	status  StatusSource
	started time.Time
	logger  *slog.Logger
}

func NewHandlers(status StatusSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		status:  status,
		started: time.Now(),
		logger:  logger,
	}
}

type HealthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Uptime string `json:"uptime"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		State:  string(h.status.Status().State),
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

// GetStatus returns counters and per-URL outcomes of the current run.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	s := h.status.Status()
	if s.RunID == "" {
		h.respondError(w, http.StatusNotFound, "no run started")
		return
	}
	h.respondJSON(w, http.StatusOK, s)
}

// ListURLs returns per-URL outcomes, optionally filtered by ?outcome=.
func (h *Handlers) ListURLs(w http.ResponseWriter, r *http.Request) {
	urls := h.status.Status().URLs
	outcome := r.URL.Query().Get("outcome")
	if outcome == "" {
		h.respondJSON(w, http.StatusOK, urls)
		return
	}

	filtered := make([]workflow.URLStatus, 0, len(urls))
	for _, u := range urls {
		if string(u.Outcome) == outcome {
			filtered = append(filtered, u)
		}
	}
	h.respondJSON(w, http.StatusOK, filtered)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
