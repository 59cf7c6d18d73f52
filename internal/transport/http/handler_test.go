package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/internal/pipeline"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

type stubProvider struct {
	run *pipeline.RunResult
}

func (s *stubProvider) Latest() (*pipeline.RunResult, bool) {
	return s.run, s.run != nil
}

func fptr(v float64) *float64 { return &v }

func testRun() *pipeline.RunResult {
	return &pipeline.RunResult{
		RunID:       "run-1",
		StartedAt:   time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		CompletedAt: time.Date(2021, 6, 1, 0, 1, 0, 0, time.UTC),
		Panel: []domain.PanelRow{
			{
				Ticker:   "AAPL",
				CountyID: "06085",
				Month:    domain.NewYearMonth(2021, time.January),
			},
			{
				Ticker:   "MSFT",
				CountyID: "53033",
				Month:    domain.NewYearMonth(2021, time.January),
			},
		},
		Brightness: []domain.BrightnessChange{
			{
				BrightnessRecord: domain.BrightnessRecord{
					CountyID:    "06085",
					Month:       domain.NewYearMonth(2021, time.February),
					AvgRadiance: 12,
					NumReadings: 1,
				},
				Change: fptr(2),
			},
		},
		Rejections: []domain.Rejection{
			{Ticker: "XYZ", Reason: domain.ReasonUnassignedLocation},
		},
		Regression: &domain.RegressionResult{
			Coefficient: 0.0125,
			NObs:        4,
			ClusterBy:   domain.ClusterNone,
		},
		Summary: pipeline.Summary{PanelRows: 2, Rejections: 1},
	}
}

func newTestHandler(run *pipeline.RunResult) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(&stubProvider{run: run}, logger, apperrors.NewErrorHandler(logger, false))
}

func get(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetPanel(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/panel")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID string            `json:"run_id"`
		Rows  []domain.PanelRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Len(t, body.Rows, 2)
}

func TestGetPanelBeforeFirstRun(t *testing.T) {
	rec := get(t, newTestHandler(nil), "/panel")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestGetPanelByTicker(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/panel/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ticker string            `json:"ticker"`
		Rows   []domain.PanelRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body.Ticker)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "06085", body.Rows[0].CountyID)
}

func TestGetPanelByTickerNotFound(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/panel/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCountyBrightness(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/counties/06085/brightness")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CountyID string                    `json:"county_id"`
		Series   []domain.BrightnessChange `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "06085", body.CountyID)
	assert.Len(t, body.Series, 1)
}

func TestGetCountyBrightnessNotFound(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/counties/99999/brightness")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRegression(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/regression")
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.RegressionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0.0125, result.Coefficient)
	assert.Equal(t, 4, result.NObs)
}

func TestGetRejections(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/rejections")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    int            `json:"total"`
		ByReason map[string]int `json:"by_reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.ByReason[string(domain.ReasonUnassignedLocation)])
}

func TestGetSummary(t *testing.T) {
	rec := get(t, newTestHandler(testRun()), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID   string           `json:"run_id"`
		Summary pipeline.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, 2, body.Summary.PanelRows)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
