package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }

func TestWritePanelNullsAsEmptyCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "panel.csv")
	rows := []domain.PanelRow{
		{
			Ticker:           "AAPL",
			CountyID:         "06085",
			CountyName:       "Santa Clara",
			Month:            domain.NewYearMonth(2021, time.January),
			AvgRadiance:      fptr(12.5),
			BrightnessChange: nil,
			MonthlyReturn:    fptr(0.02),
			RetFwd1M:         nil,
		},
	}

	writer := NewCSVWriter(nil)
	require.NoError(t, writer.WritePanel(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"ticker,county_fips,county_name,date,avg_rad_month,brightness_change,ret,ret_fwd_1m\n"+
			"AAPL,06085,Santa Clara,2021-01,12.5,,0.02,\n",
		string(data))
}

func TestWriteRejections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejections.csv")
	rejections := []domain.Rejection{
		{
			Ticker: "XYZ",
			Reason: domain.ReasonUnassignedLocation,
			Detail: "HQ outside all county polygons",
		},
	}

	writer := NewCSVWriter(nil)
	require.NoError(t, writer.WriteRejections(path, rejections))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"ticker,county_fips,date,reason,detail\n"+
			"XYZ,,,UnassignedLocation,HQ outside all county polygons\n",
		string(data))
}

func TestWriteBrightness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness.csv")
	changes := []domain.BrightnessChange{
		{
			BrightnessRecord: domain.BrightnessRecord{
				CountyID:    "17031",
				CountyName:  "Cook",
				State:       "Illinois",
				Month:       domain.NewYearMonth(2021, time.February),
				AvgRadiance: 12,
				NumReadings: 3,
			},
			Change: fptr(2),
		},
	}

	writer := NewCSVWriter(nil)
	require.NoError(t, writer.WriteBrightness(path, changes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"county_fips,county_name,state,date,avg_rad_month,brightness_change,n_readings\n"+
			"17031,Cook,Illinois,2021-02,12,2,3\n",
		string(data))
}

func TestWriteRegressionJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "regression.json")
	result := &domain.RegressionResult{
		Coefficient:       0.0125,
		StdErr:            0.0068,
		TStat:             1.83,
		RSquared:          0.625,
		NObs:              5,
		FixedEffectLevels: 2,
		ClusterBy:         domain.ClusterNone,
	}

	writer := NewJSONWriter(nil)
	require.NoError(t, writer.WriteRegression(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"coefficient_on_brightness_change": 0.0125`)
	assert.Contains(t, string(data), `"n_observations": 5`)
}
