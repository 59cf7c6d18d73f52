package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// CSVWriter writes pipeline outputs as CSV files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WritePanel writes the assembled panel. Missing values render as empty
// cells so that downstream tools read them back as nulls, not zeros.
func (w *CSVWriter) WritePanel(path string, rows []domain.PanelRow) error {
	headers := []string{
		"ticker", "county_fips", "county_name", "date",
		"avg_rad_month", "brightness_change", "ret", "ret_fwd_1m",
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Ticker,
			row.CountyID,
			row.CountyName,
			row.Month.String(),
			formatNullable(row.AvgRadiance),
			formatNullable(row.BrightnessChange),
			formatNullable(row.MonthlyReturn),
			formatNullable(row.RetFwd1M),
		})
	}
	return w.write(path, headers, records)
}

// WriteRejections writes the rejection report.
func (w *CSVWriter) WriteRejections(path string, rejections []domain.Rejection) error {
	headers := []string{"ticker", "county_fips", "date", "reason", "detail"}
	records := make([][]string, 0, len(rejections))
	for _, r := range rejections {
		records = append(records, []string{
			r.Ticker, r.CountyID, r.Month, string(r.Reason), r.Detail,
		})
	}
	return w.write(path, headers, records)
}

// WriteBrightness writes the county-month brightness series.
func (w *CSVWriter) WriteBrightness(path string, changes []domain.BrightnessChange) error {
	headers := []string{
		"county_fips", "county_name", "state", "date",
		"avg_rad_month", "brightness_change", "n_readings",
	}
	records := make([][]string, 0, len(changes))
	for _, c := range changes {
		records = append(records, []string{
			c.CountyID,
			c.CountyName,
			c.State,
			c.Month.String(),
			strconv.FormatFloat(c.AvgRadiance, 'g', -1, 64),
			formatNullable(c.Change),
			strconv.Itoa(c.NumReadings),
		})
	}
	return w.write(path, headers, records)
}

func (w *CSVWriter) write(path string, headers []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	if err := writer.Error(); err != nil {
		return err
	}

	w.logger.Info("csv file written",
		slog.String("path", path),
		slog.Int("record_count", len(records)))
	return nil
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
