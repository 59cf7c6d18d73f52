package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

func TestPricesLoaderReturnColumn(t *testing.T) {
	path := writeTempCSV(t,
		"ticker,date,return\n"+
			"aapl,2021-01-01,0.021\n"+
			"AAPL,2021-02-01,-0.013\n")

	loader := NewPricesLoader(nil)
	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, result.FromPrices)
	require.Len(t, result.Observations, 2)

	assert.Equal(t, "AAPL", result.Observations[0].Ticker)
	assert.Equal(t, domain.NewYearMonth(2021, time.January), result.Observations[0].Month)
	assert.Equal(t, 0.021, result.Observations[0].Return)
}

func TestPricesLoaderPriceColumn(t *testing.T) {
	path := writeTempCSV(t,
		"ticker,date,adj_close\n"+
			"MSFT,2021-01-01,231.96\n")

	loader := NewPricesLoader(nil)
	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, result.FromPrices)
	require.Len(t, result.Observations, 1)
	assert.Equal(t, 231.96, result.Observations[0].Price)
}

func TestPricesLoaderPrefersReturnOverPrice(t *testing.T) {
	path := writeTempCSV(t,
		"ticker,date,ret,close\n"+
			"MSFT,2021-01-01,0.05,231.96\n")

	loader := NewPricesLoader(nil)
	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, result.FromPrices)
	assert.Equal(t, 0.05, result.Observations[0].Return)
}

func TestPricesLoaderDropsIncompleteRows(t *testing.T) {
	path := writeTempCSV(t,
		"ticker,date,return\n"+
			"AAPL,2021-01-01,0.02\n"+
			",2021-02-01,0.01\n"+
			"AAPL,not-a-date,0.01\n"+
			"AAPL,2021-03-01,\n")

	loader := NewPricesLoader(nil)
	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, result.Observations, 1)
}

func TestPricesLoaderMonthOnlyDates(t *testing.T) {
	path := writeTempCSV(t,
		"ticker,month,ret\n"+
			"AAPL,2021-07,0.02\n")

	loader := NewPricesLoader(nil)
	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, result.Observations, 1)
	assert.Equal(t, domain.NewYearMonth(2021, time.July), result.Observations[0].Month)
}

func TestPricesLoaderMissingValueColumn(t *testing.T) {
	path := writeTempCSV(t, "ticker,date,volume\nAAPL,2021-01-01,100\n")

	loader := NewPricesLoader(nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}
