package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/internal/pipeline"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// RunProvider exposes the latest pipeline run to the dashboard API.
type RunProvider interface {
	Latest() (*pipeline.RunResult, bool)
}

// Handler serves the dashboard API over the latest pipeline run.
type Handler struct {
	provider     RunProvider
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler creates a new dashboard API handler.
func NewHandler(provider RunProvider, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		provider:     provider,
		logger:       logger.With(slog.String("component", "api_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/panel", h.GetPanel)
	r.Get("/panel/{ticker}", h.GetPanelByTicker)
	r.Get("/counties/{id}/brightness", h.GetCountyBrightness)
	r.Get("/regression", h.GetRegression)
	r.Get("/rejections", h.GetRejections)
	r.Get("/summary", h.GetSummary)

	r.NotFound(h.errorHandler.NotFound)
	r.MethodNotAllowed(h.errorHandler.MethodNotAllowed)

	return r
}

// latestRun fetches the retained run or reports 404 when none completed yet.
func (h *Handler) latestRun(w http.ResponseWriter, r *http.Request) (*pipeline.RunResult, bool) {
	run, ok := h.provider.Latest()
	if !ok {
		h.errorHandler.HandleError(w, r, apperrors.NewNotFoundError("pipeline run"))
		return nil, false
	}
	return run, true
}

// GetPanel returns the full firm-month panel.
func (h *Handler) GetPanel(w http.ResponseWriter, r *http.Request) {
	run, ok := h.latestRun(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id": run.RunID,
		"rows":   run.Panel,
	})
}

// GetPanelByTicker returns one firm's panel rows.
func (h *Handler) GetPanelByTicker(w http.ResponseWriter, r *http.Request) {
	run, ok := h.latestRun(w, r)
	if !ok {
		return
	}
	ticker := chi.URLParam(r, "ticker")

	rows := make([]domain.PanelRow, 0)
	for _, row := range run.Panel {
		if row.Ticker == ticker {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.NewNotFoundError("ticker "+ticker))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"ticker": ticker,
		"rows":   rows,
	})
}

// GetCountyBrightness returns one county's brightness series.
func (h *Handler) GetCountyBrightness(w http.ResponseWriter, r *http.Request) {
	run, ok := h.latestRun(w, r)
	if !ok {
		return
	}
	countyID := chi.URLParam(r, "id")

	series := make([]domain.BrightnessChange, 0)
	for _, change := range run.Brightness {
		if change.CountyID == countyID {
			series = append(series, change)
		}
	}
	if len(series) == 0 {
		h.errorHandler.HandleError(w, r, apperrors.NewNotFoundError("county "+countyID))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"county_id": countyID,
		"series":    series,
	})
}

// GetRegression returns the fitted model.
func (h *Handler) GetRegression(w http.ResponseWriter, r *http.Request) {
	run, ok := h.latestRun(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, run.Regression)
}

// GetRejections returns the data-quality rejection report.
func (h *Handler) GetRejections(w http.ResponseWriter, r *http.Request) {
	run, ok := h.latestRun(w, r)
	if !ok {
		return
	}

	byReason := make(map[string]int)
	for _, rejection := range run.Rejections {
		byReason[string(rejection.Reason)]++
	}
	reasons := make([]string, 0, len(byReason))
	for reason := range byReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	render.JSON(w, r, map[string]interface{}{
		"total":      len(run.Rejections),
		"by_reason":  byReason,
		"reasons":    reasons,
		"rejections": run.Rejections,
	})
}

// GetSummary returns the headline counts and timing of the latest run.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := h.latestRun(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, run)
}

// Healthz reports process liveness. It deliberately does not require a
// completed run: the server is healthy while the first run is in flight.
func Healthz(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// Metrics exposes the Prometheus metrics endpoint.
func Metrics() http.Handler {
	return promhttp.Handler()
}
