package returns

import (
	"context"
	"log/slog"
	"sort"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Builder converts raw per-ticker monthly observations into a return series
// with a forward-shifted next-month return.
type Builder struct {
	logger     *slog.Logger
	fromPrices bool
}

// BuilderConfig holds configuration options for the Builder.
type BuilderConfig struct {
	// FromPrices derives simple returns (p_t / p_{t-1} - 1) from price
	// observations; otherwise the Return field is passed through.
	FromPrices bool
}

// NewBuilder creates a new return series builder.
func NewBuilder(logger *slog.Logger, cfg BuilderConfig) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger, fromPrices: cfg.FromPrices}
}

// Build produces the per-ticker return series. Within each ticker,
// observations are ordered by month; ret_fwd_1m(t) is the monthly return of
// month t+1, left nil for the ticker's last observed month, and never
// bridged across a gap in the monthly series. A duplicate (ticker, month)
// observation is fatal for the stage.
func (b *Builder) Build(ctx context.Context, observations []domain.PriceObservation) ([]domain.ReturnRecord, error) {
	b.logger.InfoContext(ctx, "building return series",
		slog.Int("observation_count", len(observations)),
		slog.Bool("from_prices", b.fromPrices))

	byTicker := make(map[string][]domain.PriceObservation)
	seen := make(map[domain.PanelKey]bool, len(observations))
	for _, obs := range observations {
		key := domain.PanelKey{Ticker: obs.Ticker, Month: obs.Month}
		if seen[key] {
			return nil, apperrors.NewDuplicateKeyError("returns",
				obs.Ticker+"/"+obs.Month.String())
		}
		seen[key] = true
		byTicker[obs.Ticker] = append(byTicker[obs.Ticker], obs)
	}

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var records []domain.ReturnRecord
	for _, ticker := range tickers {
		series := byTicker[ticker]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Month.Before(series[j].Month)
		})
		records = append(records, b.buildTicker(series)...)
	}

	b.logger.InfoContext(ctx, "return series built",
		slog.Int("ticker_count", len(tickers)),
		slog.Int("record_count", len(records)))

	return records, nil
}

// buildTicker converts one ticker's month-ordered observations.
func (b *Builder) buildTicker(series []domain.PriceObservation) []domain.ReturnRecord {
	var records []domain.ReturnRecord

	for i, obs := range series {
		record := domain.ReturnRecord{Ticker: obs.Ticker, Month: obs.Month}

		if b.fromPrices {
			// The first priced month has no prior price, and a gap breaks
			// the price link: either way there is no return for the month.
			if i == 0 || series[i-1].Month.Next() != obs.Month || series[i-1].Price == 0 {
				continue
			}
			record.MonthlyReturn = obs.Price/series[i-1].Price - 1
		} else {
			record.MonthlyReturn = obs.Return
		}

		records = append(records, record)
	}

	// Forward returns link only strictly adjacent months.
	for i := range records {
		if i+1 < len(records) && records[i].Month.Next() == records[i+1].Month {
			fwd := records[i+1].MonthlyReturn
			records[i].RetFwd1M = &fwd
		}
	}

	return records
}
