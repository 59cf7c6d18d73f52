package nightlights

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Aggregator reduces raw satellite radiance observations to a county-month
// brightness series and derives the month-over-month brightness change.
type Aggregator struct {
	logger     *slog.Logger
	countryISO string
	window     domain.YearMonth
}

// AggregatorConfig holds configuration options for the Aggregator.
type AggregatorConfig struct {
	CountryISO  string           // Keep only observations tagged with this ISO code; empty keeps all
	WindowStart domain.YearMonth // Drop months before this; zero keeps the full history
}

// NewAggregator creates a new brightness aggregator with the given configuration.
func NewAggregator(logger *slog.Logger, cfg AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger:     logger,
		countryISO: cfg.CountryISO,
		window:     cfg.WindowStart,
	}
}

// countyMonthKey identifies one aggregation bucket.
type countyMonthKey struct {
	countyID string
	month    domain.YearMonth
}

// Aggregate groups raw observations by (county, month) and computes the mean
// radiance. A county-month with zero underlying observations is simply absent
// from the output, never zero-filled. Output is sorted by (county, month) so
// reruns are reproducible.
func (a *Aggregator) Aggregate(ctx context.Context, observations []domain.RadianceObservation) []domain.BrightnessRecord {
	a.logger.InfoContext(ctx, "aggregating radiance observations",
		slog.Int("observation_count", len(observations)),
		slog.String("country_iso", a.countryISO))

	type bucket struct {
		sum        float64
		count      int
		countyName string
		state      string
	}
	buckets := make(map[countyMonthKey]*bucket)

	skipped := 0
	for _, obs := range observations {
		if !obs.IsValid() {
			skipped++
			continue
		}
		if a.countryISO != "" && obs.CountryISO != "" && obs.CountryISO != a.countryISO {
			skipped++
			continue
		}
		if !a.window.IsZero() && obs.Month.Before(a.window) {
			skipped++
			continue
		}

		key := countyMonthKey{countyID: obs.CountyID, month: obs.Month}
		b := buckets[key]
		if b == nil {
			b = &bucket{countyName: obs.CountyName, state: obs.State}
			buckets[key] = b
		}
		b.sum += obs.Radiance
		b.count++
	}

	records := make([]domain.BrightnessRecord, 0, len(buckets))
	for key, b := range buckets {
		records = append(records, domain.BrightnessRecord{
			CountyID:    key.countyID,
			CountyName:  b.countyName,
			State:       b.state,
			Month:       key.month,
			AvgRadiance: b.sum / float64(b.count),
			NumReadings: b.count,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CountyID != records[j].CountyID {
			return records[i].CountyID < records[j].CountyID
		}
		return records[i].Month.Before(records[j].Month)
	})

	a.logger.InfoContext(ctx, "radiance aggregation complete",
		slog.Int("county_months", len(records)),
		slog.Int("skipped_observations", skipped))

	return records
}

// Changes derives the month-over-month brightness change per county. The
// change at a county's first observed month is undefined (nil), and a gap in
// monthly coverage leaves the change at the gap boundary undefined as well:
// differences are only taken between strictly adjacent calendar months.
func (a *Aggregator) Changes(ctx context.Context, records []domain.BrightnessRecord) []domain.BrightnessChange {
	prior := make(map[countyMonthKey]float64, len(records))
	for _, rec := range records {
		prior[countyMonthKey{countyID: rec.CountyID, month: rec.Month}] = rec.AvgRadiance
	}

	changes := make([]domain.BrightnessChange, 0, len(records))
	undefined := 0
	for _, rec := range records {
		change := domain.BrightnessChange{BrightnessRecord: rec}
		if prev, ok := prior[countyMonthKey{countyID: rec.CountyID, month: rec.Month.Prev()}]; ok {
			delta := rec.AvgRadiance - prev
			change.Change = &delta
		} else {
			undefined++
		}
		changes = append(changes, change)
	}

	a.logger.InfoContext(ctx, "brightness changes derived",
		slog.Int("county_months", len(changes)),
		slog.Int("undefined_changes", undefined))

	return changes
}

// BuildSeries is the full aggregator stage: observations in, brightness
// change series out.
func (a *Aggregator) BuildSeries(ctx context.Context, observations []domain.RadianceObservation) []domain.BrightnessChange {
	return a.Changes(ctx, a.Aggregate(ctx, observations))
}
