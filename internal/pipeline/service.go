package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rchrostowski/elorevnightlightproject/internal/config"
	"github.com/rchrostowski/elorevnightlightproject/internal/dataprocessing"
	"github.com/rchrostowski/elorevnightlightproject/internal/exporter"
	"github.com/rchrostowski/elorevnightlightproject/internal/geo"
	"github.com/rchrostowski/elorevnightlightproject/internal/infrastructure"
	"github.com/rchrostowski/elorevnightlightproject/internal/nightlights"
	"github.com/rchrostowski/elorevnightlightproject/internal/panel"
	"github.com/rchrostowski/elorevnightlightproject/internal/regression"
	"github.com/rchrostowski/elorevnightlightproject/internal/returns"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Service runs the full pipeline: raw files in, panel and regression out.
// The latest completed run is retained in memory for the dashboard API.
type Service struct {
	logger  *slog.Logger
	cfg     *config.Config
	metrics *Metrics

	lightsLoader *dataprocessing.LightsLoader
	firmsLoader  *dataprocessing.FirmsLoader
	pricesLoader *dataprocessing.PricesLoader
	csvWriter    *exporter.CSVWriter
	jsonWriter   *exporter.JSONWriter

	mu     sync.RWMutex
	latest *RunResult
}

// RunResult is the in-memory product of one pipeline run.
type RunResult struct {
	RunID       string                    `json:"run_id"`
	StartedAt   time.Time                 `json:"started_at"`
	CompletedAt time.Time                 `json:"completed_at"`
	Panel       []domain.PanelRow         `json:"-"`
	Brightness  []domain.BrightnessChange `json:"-"`
	Rejections  []domain.Rejection        `json:"-"`
	Regression  *domain.RegressionResult  `json:"regression"`
	Summary     Summary                   `json:"summary"`
}

// Summary holds the headline counts of a run.
type Summary struct {
	Firms         int `json:"firms"`
	AssignedFirms int `json:"assigned_firms"`
	CountyMonths  int `json:"county_months"`
	ReturnRecords int `json:"return_records"`
	PanelRows     int `json:"panel_rows"`
	CompleteRows  int `json:"complete_rows"`
	Rejections    int `json:"rejections"`
}

// NewService wires the pipeline stages together.
func NewService(logger *slog.Logger, cfg *config.Config, reg prometheus.Registerer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Service{
		logger:       logger,
		cfg:          cfg,
		metrics:      NewMetrics(reg),
		lightsLoader: dataprocessing.NewLightsLoader(logger),
		firmsLoader:  dataprocessing.NewFirmsLoader(logger),
		pricesLoader: dataprocessing.NewPricesLoader(logger),
		csvWriter:    exporter.NewCSVWriter(logger),
		jsonWriter:   exporter.NewJSONWriter(logger),
	}
}

// Latest returns the most recent completed run, if any.
func (s *Service) Latest() (*RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Run executes every stage in order and writes the output artifacts.
// A run is all-or-nothing: the retained result and the files on disk
// are only replaced after the regression has been fitted.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.New().String()
	ctx = infrastructure.WithRunID(ctx, runID)
	started := time.Now()

	s.logger.InfoContext(ctx, "pipeline run starting",
		slog.String("data_dir", s.cfg.Paths.DataDir))

	result, err := s.run(ctx, runID, started)
	s.metrics.RunDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.RunsTotal.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "pipeline run failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)))
		return nil, err
	}
	s.metrics.RunsTotal.WithLabelValues("success").Inc()

	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "pipeline run complete",
		slog.Int("panel_rows", result.Summary.PanelRows),
		slog.Int("rejections", result.Summary.Rejections),
		slog.Duration("elapsed", time.Since(started)))

	return result, nil
}

func (s *Service) run(ctx context.Context, runID string, started time.Time) (*RunResult, error) {
	// Stage 1: load and aggregate radiance observations.
	stageStart := time.Now()
	observations, err := s.lightsLoader.Load(ctx, s.cfg.InputPath(s.cfg.Paths.LightsFile))
	if err != nil {
		return nil, err
	}
	aggregator := nightlights.NewAggregator(s.logger, nightlights.AggregatorConfig{
		CountryISO:  s.cfg.Pipeline.CountryISO,
		WindowStart: s.cfg.Window(),
	})
	brightness := aggregator.BuildSeries(ctx, observations)
	s.metrics.StageDuration.WithLabelValues("brightness").Observe(time.Since(stageStart).Seconds())

	// Stage 2: locate firm headquarters in county polygons.
	stageStart = time.Now()
	firms, err := s.firmsLoader.Load(ctx, s.cfg.InputPath(s.cfg.Paths.FirmsFile))
	if err != nil {
		return nil, err
	}
	boundaries, err := geo.LoadBoundaries(s.cfg.InputPath(s.cfg.Paths.CountiesFile))
	if err != nil {
		return nil, err
	}
	locator := geo.NewLocator(s.logger, boundaries)
	assignedFirms, rejections := locator.AssignCounties(ctx, firms)
	s.metrics.StageDuration.WithLabelValues("geocode").Observe(time.Since(stageStart).Seconds())

	// Stage 3: build the monthly return series.
	stageStart = time.Now()
	prices, err := s.pricesLoader.Load(ctx, s.cfg.InputPath(s.cfg.Paths.ReturnsFile))
	if err != nil {
		return nil, err
	}
	builder := returns.NewBuilder(s.logger, returns.BuilderConfig{FromPrices: prices.FromPrices})
	returnSeries, err := builder.Build(ctx, prices.Observations)
	if err != nil {
		return nil, err
	}
	s.metrics.StageDuration.WithLabelValues("returns").Observe(time.Since(stageStart).Seconds())

	// Stage 4: assemble the firm-month panel.
	stageStart = time.Now()
	assembler := panel.NewAssembler(s.logger)
	assembled, err := assembler.Assemble(ctx, assignedFirms, brightness, returnSeries)
	if err != nil {
		return nil, err
	}
	rejections = append(rejections, assembled.Rejections...)
	s.metrics.StageDuration.WithLabelValues("panel").Observe(time.Since(stageStart).Seconds())

	// Stage 5: fit the fixed-effects regression.
	stageStart = time.Now()
	engine := regression.NewEngine(s.logger, regression.EngineConfig{ClusterBy: s.cfg.Cluster()})
	fit, err := engine.Fit(ctx, assembled.Rows)
	if err != nil {
		return nil, err
	}
	s.metrics.StageDuration.WithLabelValues("regression").Observe(time.Since(stageStart).Seconds())

	// Stage 6: write output artifacts.
	stageStart = time.Now()
	if err := s.csvWriter.WritePanel(s.cfg.OutputPath(s.cfg.Paths.PanelFile), assembled.Rows); err != nil {
		return nil, err
	}
	if err := s.csvWriter.WriteBrightness(s.cfg.OutputPath(s.cfg.Paths.BrightnessFile), brightness); err != nil {
		return nil, err
	}
	if err := s.csvWriter.WriteRejections(s.cfg.OutputPath(s.cfg.Paths.RejectionsFile), rejections); err != nil {
		return nil, err
	}
	if err := s.jsonWriter.WriteRegression(s.cfg.OutputPath(s.cfg.Paths.RegressionFile), fit); err != nil {
		return nil, err
	}
	s.metrics.StageDuration.WithLabelValues("export").Observe(time.Since(stageStart).Seconds())

	completeRows := len(panel.CompleteRows(assembled.Rows))
	s.metrics.PanelRows.Set(float64(len(assembled.Rows)))
	s.metrics.CompleteRows.Set(float64(completeRows))
	s.observeRejections(rejections)

	return &RunResult{
		RunID:       runID,
		StartedAt:   started,
		CompletedAt: time.Now(),
		Panel:       assembled.Rows,
		Brightness:  brightness,
		Rejections:  rejections,
		Regression:  fit,
		Summary: Summary{
			Firms:         len(firms),
			AssignedFirms: len(assignedFirms),
			CountyMonths:  len(brightness),
			ReturnRecords: len(returnSeries),
			PanelRows:     len(assembled.Rows),
			CompleteRows:  completeRows,
			Rejections:    len(rejections),
		},
	}, nil
}

func (s *Service) observeRejections(rejections []domain.Rejection) {
	counts := make(map[domain.RejectionReason]int)
	for _, r := range rejections {
		counts[r.Reason]++
	}
	s.metrics.Rejections.Reset()
	for reason, count := range counts {
		s.metrics.Rejections.WithLabelValues(string(reason)).Set(float64(count))
	}
}
