package dataprocessing

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// PricesLoader reads the monthly stock file. The file carries either a
// realised-return column or a closing-price column; FromPrices on the
// result tells the return builder which one it got.
type PricesLoader struct {
	logger *slog.Logger
}

// NewPricesLoader creates a new PricesLoader.
func NewPricesLoader(logger *slog.Logger) *PricesLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PricesLoader{logger: logger}
}

// PricesResult is the parsed stock file plus the shape it arrived in.
type PricesResult struct {
	Observations []domain.PriceObservation
	// FromPrices is true when the value column held prices rather than
	// precomputed returns.
	FromPrices bool
}

// Load parses the stock file at path.
func (l *PricesLoader) Load(ctx context.Context, path string) (*PricesResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open stock file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("read stock file header", err).
			WithContext("path", path)
	}
	cols := newColumnMap(header)

	tickerIdx, tickerOK := cols.find("ticker", "symbol")
	dateIdx, dateOK := cols.find("date", "month")
	if !tickerOK || !dateOK {
		return nil, apperrors.NewParsingError("stock file needs ticker and date columns", nil).
			WithContext("path", path)
	}

	valueIdx, isReturn := cols.find("ret", "return", "monthly_return")
	if !isReturn {
		priceIdx, priceOK := cols.find("price", "close", "adj_close", "adjusted_close")
		if !priceOK {
			return nil, apperrors.NewParsingError(
				"stock file needs a return or price column", nil).
				WithContext("path", path)
		}
		valueIdx = priceIdx
	}

	var (
		observations []domain.PriceObservation
		dropped      int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read stock file row", err).
				WithContext("path", path)
		}

		ticker := NormalizeTicker(cell(row, tickerIdx))
		month, monthOK := parseMonthCell(row, dateIdx)
		value, valueOK := parseFloatCell(row, valueIdx)
		if ticker == "" || !monthOK || !valueOK {
			dropped++
			continue
		}

		obs := domain.PriceObservation{Ticker: ticker, Month: month}
		if isReturn {
			obs.Return = value
		} else {
			obs.Price = value
		}
		observations = append(observations, obs)
	}

	l.logger.InfoContext(ctx, "stock file loaded",
		slog.String("path", path),
		slog.Int("observations", len(observations)),
		slog.Int("dropped_rows", dropped),
		slog.Bool("from_prices", !isReturn))

	return &PricesResult{Observations: observations, FromPrices: !isReturn}, nil
}
