package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	healthCheckTimeout = 5 * time.Second
	statsWindow        = 24 * time.Hour
	maxRecentChats     = 50
)

// HealthHandler handles health, UI config and stats endpoints.
type HealthHandler struct {
	repo      store.Repository
	chatReady func() bool
	model     string
	now       func() time.Time
}

// NewHealthHandler creates a new health handler. repo may be nil when the
// audit store is disabled; chatReady reports whether the upstream credential
// is present.
func NewHealthHandler(repo store.Repository, chatReady func() bool, model string) *HealthHandler {
	if chatReady == nil {
		chatReady = func() bool { return false }
	}
	return &HealthHandler{repo: repo, chatReady: chatReady, model: model, now: time.Now}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := "healthy"
	statusCode := http.StatusOK

	switch {
	case h.repo == nil:
		checks["database"] = "disabled"
	case h.repo.Ping(ctx) != nil:
		slog.Error("Health check failed: database unreachable")
		checks["database"] = "unreachable"
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	default:
		checks["database"] = "ok"
	}

	if h.chatReady() {
		checks["credential"] = "ok"
	} else {
		checks["credential"] = "missing"
		status = "degraded"
	}

	JSON(w, statusCode, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// Config returns what the web UI needs to know about the server.
func (h *HealthHandler) Config(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"chat_enabled": h.chatReady(),
		"model":        h.model,
	})
}

// Stats returns chat audit counts over the last 24 hours. With ?recent=N it
// also lists up to N of the newest records.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusNotFound, "audit disabled")
		return
	}
	recent := 0
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "recent must be a non-negative integer")
			return
		}
		recent = min(n, maxRecentChats)
	}

	stats, err := h.repo.ChatStats(r.Context(), h.now().Add(-statsWindow))
	if err != nil {
		slog.Error("Failed to load chat stats", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	if recent > 0 {
		records, err := h.repo.RecentChats(r.Context(), recent)
		if err != nil {
			slog.Error("Failed to load recent chats", "error", err)
			Error(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		stats.Recent = make([]domain.ChatSummary, 0, len(records))
		for _, rec := range records {
			stats.Recent = append(stats.Recent, rec.Summary())
		}
	}
	JSON(w, http.StatusOK, stats)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}

// RegisterRoutes registers the config and stats routes.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/config", h.Config)
	r.Get("/api/stats", h.Stats)
}
