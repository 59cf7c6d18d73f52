package regression

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }

func row(ticker string, year, month int, change, retFwd float64) domain.PanelRow {
	avg := 5.0
	return domain.PanelRow{
		Ticker:           ticker,
		CountyID:         "17031",
		CountyName:       "Cook",
		Month:            domain.NewYearMonth(year, time.Month(month)),
		AvgRadiance:      &avg,
		BrightnessChange: fptr(change),
		MonthlyReturn:    fptr(0.01),
		RetFwd1M:         fptr(retFwd),
	}
}

// twoGroupPanel is a hand-computed fixture: the within estimator gives
// slope 0.0125 with residual sum of squares 3.75e-4 over 5 observations
// and 2 year-month groups.
func twoGroupPanel() []domain.PanelRow {
	return []domain.PanelRow{
		row("AAA", 2021, 1, 1, 0.01),
		row("BBB", 2021, 1, 2, 0.03),
		row("CCC", 2021, 1, 3, 0.02),
		row("AAA", 2021, 2, 0, 0.00),
		row("BBB", 2021, 2, 2, 0.04),
	}
}

func TestEngineFitGoldenValues(t *testing.T) {
	engine := NewEngine(nil, EngineConfig{})

	result, err := engine.Fit(context.Background(), twoGroupPanel())
	require.NoError(t, err)

	assert.InDelta(t, 0.0125, result.Coefficient, 1e-12)
	assert.InDelta(t, 0.00684653196881, result.StdErr, 1e-12)
	assert.InDelta(t, 1.82574185835, result.TStat, 1e-10)
	assert.InDelta(t, 0.625, result.RSquared, 1e-12)
	assert.Equal(t, 5, result.NObs)
	assert.Equal(t, 2, result.FixedEffectLevels)
	assert.Equal(t, 0, result.DroppedSingletons)
	assert.Equal(t, domain.ClusterNone, result.ClusterBy)
	assert.Equal(t, 0, result.NClusters)
}

func TestEngineDropsSingletonGroups(t *testing.T) {
	rows := twoGroupPanel()
	// A lone observation in 2021-03 is absorbed by its own fixed effect
	// and must not enter the sample.
	rows = append(rows, row("DDD", 2021, 3, 9, 0.50))

	engine := NewEngine(nil, EngineConfig{})
	result, err := engine.Fit(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 5, result.NObs)
	assert.Equal(t, 2, result.FixedEffectLevels)
	assert.Equal(t, 1, result.DroppedSingletons)
	assert.InDelta(t, 0.0125, result.Coefficient, 1e-12)
}

func TestEngineIgnoresIncompleteRows(t *testing.T) {
	rows := twoGroupPanel()
	missing := row("EEE", 2021, 1, 4, 0.02)
	missing.RetFwd1M = nil
	rows = append(rows, missing)

	engine := NewEngine(nil, EngineConfig{})
	result, err := engine.Fit(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 5, result.NObs)
	assert.InDelta(t, 0.0125, result.Coefficient, 1e-12)
}

func TestEngineInsufficientVariation(t *testing.T) {
	tests := []struct {
		name string
		rows []domain.PanelRow
	}{
		{name: "empty panel", rows: nil},
		{
			name: "single usable group",
			rows: []domain.PanelRow{
				row("AAA", 2021, 1, 1, 0.01),
				row("BBB", 2021, 1, 2, 0.03),
			},
		},
		{
			name: "only singleton groups",
			rows: []domain.PanelRow{
				row("AAA", 2021, 1, 1, 0.01),
				row("BBB", 2021, 2, 2, 0.03),
				row("CCC", 2021, 3, 3, 0.02),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(nil, EngineConfig{})
			_, err := engine.Fit(context.Background(), tt.rows)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInsufficientVariation))
		})
	}
}

func TestEngineNoWithinVariationInRegressor(t *testing.T) {
	rows := []domain.PanelRow{
		row("AAA", 2021, 1, 2, 0.01),
		row("BBB", 2021, 1, 2, 0.03),
		row("AAA", 2021, 2, 5, 0.00),
		row("BBB", 2021, 2, 5, 0.04),
	}

	engine := NewEngine(nil, EngineConfig{})
	_, err := engine.Fit(context.Background(), rows)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInsufficientVariation))
}

func TestEngineClusteredByYearMonth(t *testing.T) {
	engine := NewEngine(nil, EngineConfig{ClusterBy: domain.ClusterYearMonth})

	result, err := engine.Fit(context.Background(), twoGroupPanel())
	require.NoError(t, err)

	// Same point estimate, different variance estimator.
	assert.InDelta(t, 0.0125, result.Coefficient, 1e-12)
	assert.InDelta(t, 0.0106066017178, result.StdErr, 1e-12)
	assert.InDelta(t, 1.17851130198, result.TStat, 1e-10)
	assert.Equal(t, domain.ClusterYearMonth, result.ClusterBy)
	assert.Equal(t, 2, result.NClusters)
}

func TestEngineClusteredByTicker(t *testing.T) {
	engine := NewEngine(nil, EngineConfig{ClusterBy: domain.ClusterTicker})

	result, err := engine.Fit(context.Background(), twoGroupPanel())
	require.NoError(t, err)

	assert.InDelta(t, 0.0125, result.Coefficient, 1e-12)
	assert.Greater(t, result.StdErr, 0.0)
	assert.Equal(t, domain.ClusterTicker, result.ClusterBy)
	assert.Equal(t, 3, result.NClusters)
}

func TestEngineDeterministicAcrossInputOrder(t *testing.T) {
	rows := twoGroupPanel()
	reversed := make([]domain.PanelRow, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	engine := NewEngine(nil, EngineConfig{})
	a, err := engine.Fit(context.Background(), rows)
	require.NoError(t, err)
	b, err := engine.Fit(context.Background(), reversed)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
