package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics carries the pipeline's Prometheus instruments.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec
	PanelRows     prometheus.Gauge
	CompleteRows  prometheus.Gauge
	Rejections    *prometheus.GaugeVec
}

// NewMetrics registers the pipeline instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nightlights",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nightlights",
			Name:      "pipeline_run_duration_seconds",
			Help:      "End-to-end pipeline run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nightlights",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Per-stage pipeline duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		PanelRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nightlights",
			Name:      "panel_rows",
			Help:      "Panel rows produced by the latest run.",
		}),
		CompleteRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nightlights",
			Name:      "panel_complete_rows",
			Help:      "Panel rows with no missing values in the latest run.",
		}),
		Rejections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "nightlights",
			Name:      "rejections",
			Help:      "Rows excluded by the latest run, by reason.",
		}, []string{"reason"}),
	}
}
