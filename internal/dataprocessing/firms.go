package dataprocessing

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// FirmsLoader reads the firm universe file: one row per company with its
// ticker and headquarters coordinate. Both CSV and Excel exports are
// accepted since the upstream list circulates in both forms.
type FirmsLoader struct {
	logger *slog.Logger
}

// NewFirmsLoader creates a new FirmsLoader.
func NewFirmsLoader(logger *slog.Logger) *FirmsLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FirmsLoader{logger: logger}
}

// Load parses the firm file at path, dispatching on the file extension.
func (l *FirmsLoader) Load(ctx context.Context, path string) ([]domain.Firm, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err = l.readExcel(path)
	default:
		rows, err = l.readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("firm file is empty", nil).
			WithContext("path", path)
	}

	header := newColumnMap(rows[0])
	tickerIdx, ok := header.find("ticker", "symbol")
	if !ok {
		return nil, apperrors.NewParsingError("firm file has no ticker column", nil).
			WithContext("path", path)
	}
	companyIdx := header.optional("firm", "company", "company_name", "name")
	stateIdx := header.optional("state", "state_name")
	latIdx, latOK := header.find("lat", "latitude", "hq_lat", "headquarters_lat")
	lonIdx, lonOK := header.find("lon", "lng", "long", "longitude", "hq_lon", "headquarters_lon")
	if !latOK || !lonOK {
		return nil, apperrors.NewParsingError("firm file has no coordinate columns", nil).
			WithContext("path", path)
	}

	var (
		firms   []domain.Firm
		dropped int
	)
	for _, row := range rows[1:] {
		ticker := NormalizeTicker(cell(row, tickerIdx))
		if ticker == "" {
			dropped++
			continue
		}
		firm := domain.Firm{
			Ticker:      ticker,
			CompanyName: cell(row, companyIdx),
			State:       cell(row, stateIdx),
		}
		// A missing geocode leaves the coordinate at zero; the county
		// assignment stage rejects such firms with a recorded reason
		// instead of dropping them silently here.
		if lat, ok := parseFloatCell(row, latIdx); ok {
			firm.HQLatitude = lat
		}
		if lon, ok := parseFloatCell(row, lonIdx); ok {
			firm.HQLongitude = lon
		}
		firms = append(firms, firm)
	}

	l.logger.InfoContext(ctx, "firm file loaded",
		slog.String("path", path),
		slog.Int("firms", len(firms)),
		slog.Int("dropped_rows", dropped))

	return firms, nil
}

func (l *FirmsLoader) readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open firm file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("read firm file", err).
			WithContext("path", path)
	}
	return rows, nil
}

func (l *FirmsLoader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open firm workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("firm workbook has no sheets", nil).
			WithContext("path", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError("read firm workbook", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	return rows, nil
}
