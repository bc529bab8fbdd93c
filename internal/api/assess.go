package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ashureev/restwell/internal/baseline"
	"github.com/ashureev/restwell/internal/chart"
	"github.com/go-chi/chi/v5"
)

const defaultAssessBodySize = 64 << 10

// AssessHandler exposes the comparator and chart renderer.
type AssessHandler struct {
	assessor    *baseline.Assessor
	maxBodySize int64
}

// NewAssessHandler creates an AssessHandler. A nil assessor uses the default
// baseline table.
func NewAssessHandler(assessor *baseline.Assessor) *AssessHandler {
	if assessor == nil {
		assessor = baseline.NewAssessor(nil)
	}
	return &AssessHandler{assessor: assessor, maxBodySize: defaultAssessBodySize}
}

// Assess handles POST /api/assess.
func (h *AssessHandler) Assess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var in baseline.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.assessor.Assess(in)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, report)
}

// Baselines handles GET /api/baselines.
func (h *AssessHandler) Baselines(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"baselines": h.assessor.Table().All(),
	})
}

// ChartSVG handles GET /api/chart.svg.
func (h *AssessHandler) ChartSVG(w http.ResponseWriter, r *http.Request) {
	spec, err := h.specFromQuery(r.URL.Query())
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(spec).WriteSVG(&buf); err != nil {
		slog.Error("Failed to render SVG chart", "error", err)
		Error(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// ChartPNG handles GET /api/chart.png.
func (h *AssessHandler) ChartPNG(w http.ResponseWriter, r *http.Request) {
	spec, err := h.specFromQuery(r.URL.Query())
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, spec); err != nil {
		slog.Error("Failed to render PNG chart", "error", err)
		Error(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

var errInvalidQuery = errors.New("invalid chart query")

// specFromQuery builds a chart spec from age, gender, sleep and caffeine.
// Without age, gender and sleep the chart is empty.
func (h *AssessHandler) specFromQuery(q url.Values) (chart.Spec, error) {
	if q.Get("age") == "" || q.Get("gender") == "" || q.Get("sleep") == "" {
		return chart.Spec{}, nil
	}

	age, err := strconv.Atoi(q.Get("age"))
	if err != nil {
		return chart.Spec{}, errInvalidQuery
	}
	sleep, err := strconv.ParseFloat(q.Get("sleep"), 64)
	if err != nil {
		return chart.Spec{}, errInvalidQuery
	}
	in := baseline.Input{Age: age, Gender: q.Get("gender"), SleepHours: sleep}
	if raw := q.Get("caffeine"); raw != "" {
		mg, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return chart.Spec{}, errInvalidQuery
		}
		in.CaffeineMg = &mg
	}

	report, err := h.assessor.Assess(in)
	if errors.Is(err, baseline.ErrOutOfRange) {
		return chart.Spec{}, errInvalidQuery
	}
	if err != nil {
		// Zero age or sleep: treat like a blank form.
		return chart.Spec{}, nil
	}
	return report.Chart, nil
}

// RegisterRoutes registers the assessment routes.
func (h *AssessHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/assess", h.Assess)
	r.Get("/api/baselines", h.Baselines)
	r.Get("/api/chart.svg", h.ChartSVG)
	r.Get("/api/chart.png", h.ChartPNG)
}
