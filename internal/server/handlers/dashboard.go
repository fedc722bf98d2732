// internal/server/handlers/dashboard.go

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ecodash/internal/logging"
	"ecodash/internal/service/dashboard"
)

// DashboardBuilder assembles dashboard documents
type DashboardBuilder interface {
	Build(ctx context.Context) dashboard.Response
	BuildWithLimit(ctx context.Context, limit int) dashboard.Response
	Status() dashboard.Status
}

// SystemStatus is the body of /api/system/status
type SystemStatus struct {
	SourceAPI   bool   `json:"source_api"`
	Source      string `json:"source"`
	AIBackend   bool   `json:"ai_backend"`
	Backend     string `json:"backend"`
	NewsAPI     bool   `json:"news_api"`
	LastUpdated string `json:"last_updated"`
	Status      string `json:"status"`
}

// Health is the body of /api/health
type Health struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	builder    DashboardBuilder
	statsLimit int
	maxLimit   int
	logger     logging.Logger
	now        func() time.Time
}

// NewDashboardHandler creates a new dashboard handler. Requests for more
// than maxLimit posts are rejected.
func NewDashboardHandler(builder DashboardBuilder, statsLimit, maxLimit int, logger logging.Logger) *DashboardHandler {
	if statsLimit <= 0 {
		statsLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DashboardHandler{
		builder:    builder,
		statsLimit: statsLimit,
		maxLimit:   maxLimit,
		logger:     logger,
		now:        time.Now,
	}
}

// GetDashboardData returns the complete dashboard document. Assembly
// failures are reported inside the document, so the status is always 200.
func (h *DashboardHandler) GetDashboardData(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondWithError(w, h.logger, http.StatusBadRequest, "Invalid limit parameter", nil)
			return
		}
		if parsed > h.maxLimit {
			respondWithError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("limit must not exceed %d", h.maxLimit), nil)
			return
		}
		limit = parsed
	}

	var resp dashboard.Response
	if limit > 0 {
		resp = h.builder.BuildWithLimit(r.Context(), limit)
	} else {
		resp = h.builder.Build(r.Context())
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// GetStats returns the overview of a small freshly assembled dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	resp := h.builder.BuildWithLimit(r.Context(), h.statsLimit)
	respondWithJSON(w, http.StatusOK, resp.Data.Overview)
}

// GetSystemStatus reports collaborator availability
func (h *DashboardHandler) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := h.builder.Status()

	respondWithJSON(w, http.StatusOK, SystemStatus{
		SourceAPI:   status.SourceAvailable,
		Source:      status.Source,
		AIBackend:   status.AIAvailable,
		Backend:     status.Backend,
		NewsAPI:     status.NewsAvailable,
		LastUpdated: h.now().Format(time.RFC3339),
		Status:      "operational",
	})
}

// Health reports liveness together with collaborator availability
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.builder.Status()

	respondWithJSON(w, http.StatusOK, Health{
		Status:    "healthy",
		Timestamp: h.now().Format(time.RFC3339),
		Services: map[string]bool{
			status.Source:  status.SourceAvailable,
			status.Backend: status.AIAvailable,
			"news":         status.NewsAvailable,
		},
	})
}
