//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/go-chi/chi/v5"
)

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func serveHealth(t *testing.T, h *HealthHandler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterHealth(r)
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ready := func() bool { return true }
	notReady := func() bool { return false }

	tests := []struct {
		name       string
		repo       *fakeRepo
		chatReady  func() bool
		wantCode   int
		wantStatus string
		wantDB     string
		wantCred   string
	}{
		{"all ok", &fakeRepo{}, ready, http.StatusOK, "healthy", "ok", "ok"},
		{"db down", &fakeRepo{pingErr: errors.New("closed")}, ready, http.StatusServiceUnavailable, "degraded", "unreachable", "ok"},
		{"no credential", &fakeRepo{}, notReady, http.StatusOK, "degraded", "ok", "missing"},
		{"audit disabled", nil, ready, http.StatusOK, "healthy", "disabled", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *HealthHandler
			if tt.repo == nil {
				h = NewHealthHandler(nil, tt.chatReady, "m")
			} else {
				h = NewHealthHandler(tt.repo, tt.chatReady, "m")
			}
			w := serveHealth(t, h, "/health")

			if w.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", w.Code, tt.wantCode)
			}
			var body healthBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Checks["database"] != tt.wantDB || body.Checks["credential"] != tt.wantCred {
				t.Errorf("checks = %v", body.Checks)
			}
		})
	}
}

func TestConfigEndpoint(t *testing.T) {
	t.Parallel()

	enabled := false
	h := NewHealthHandler(nil, func() bool { return enabled }, "gemini-test")

	var got struct {
		ChatEnabled bool   `json:"chat_enabled"`
		Model       string `json:"model"`
	}
	w := serveHealth(t, h, "/api/config")
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ChatEnabled || got.Model != "gemini-test" {
		t.Errorf("config = %+v", got)
	}

	enabled = true
	w = serveHealth(t, h, "/api/config")
	_ = json.NewDecoder(w.Body).Decode(&got)
	if !got.ChatEnabled {
		t.Error("chat_enabled should follow the credential check on every request")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{stats: &domain.ChatStats{Total: 3, ByOutcome: map[string]int64{"ok": 3}}}
	h := NewHealthHandler(repo, nil, "m")
	h.now = func() time.Time { return now }

	w := serveHealth(t, h, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got domain.ChatStats
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 || got.ByOutcome["ok"] != 3 {
		t.Errorf("stats = %+v", got)
	}
	if want := now.Add(-24 * time.Hour); !repo.since.Equal(want) {
		t.Errorf("since = %v, want %v", repo.since, want)
	}
}

func TestStatsErrors(t *testing.T) {
	t.Parallel()

	w := serveHealth(t, NewHealthHandler(nil, nil, "m"), "/api/stats")
	if w.Code != http.StatusNotFound {
		t.Errorf("audit disabled: status = %d, want 404", w.Code)
	}

	w = serveHealth(t, NewHealthHandler(&fakeRepo{}, nil, "m"), "/api/stats")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("store failure: status = %d, want 500", w.Code)
	}
}

func TestStatsRecent(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	var recent []*domain.ChatAudit
	for i := 0; i < maxRecentChats+5; i++ {
		recent = append(recent, &domain.ChatAudit{
			ClientID:  "client-secret",
			Channel:   "http",
			Status:    http.StatusOK,
			Outcome:   domain.OutcomeOK,
			Latency:   120 * time.Millisecond,
			InputHash: "deadbeef",
			CreatedAt: created,
		})
	}
	repo := &fakeRepo{stats: &domain.ChatStats{Total: int64(len(recent))}, recent: recent}
	h := NewHealthHandler(repo, nil, "m")

	w := serveHealth(t, h, "/api/stats?recent=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if strings.Contains(body, "client-secret") || strings.Contains(body, "deadbeef") {
		t.Errorf("recent list leaks audit internals: %s", body)
	}
	var got domain.ChatStats
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(got.Recent))
	}
	if r := got.Recent[0]; r.Outcome != domain.OutcomeOK || r.LatencyMs != 120 || !r.CreatedAt.Equal(created) {
		t.Errorf("recent[0] = %+v", r)
	}

	serveHealth(t, h, "/api/stats?recent=1000")
	repo.mu.Lock()
	limit := repo.limit
	repo.mu.Unlock()
	if limit != maxRecentChats {
		t.Errorf("limit = %d, want %d", limit, maxRecentChats)
	}

	for _, q := range []string{"?recent=-1", "?recent=all"} {
		if w := serveHealth(t, h, "/api/stats"+q); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}

	w = serveHealth(t, h, "/api/stats")
	if strings.Contains(w.Body.String(), `"recent"`) {
		t.Errorf("recent should be omitted by default: %s", w.Body.String())
	}
}
