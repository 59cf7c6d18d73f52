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

// LightsLoader reads the raw satellite radiance export. The file carries one
// row per administrative unit and month, either with a precomputed average
// radiance or with a summed-luminosity/area pair that the loader divides out.
type LightsLoader struct {
	logger *slog.Logger
}

// NewLightsLoader creates a new LightsLoader.
func NewLightsLoader(logger *slog.Logger) *LightsLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &LightsLoader{logger: logger}
}

type lightsColumns struct {
	iso        int
	countyID   int
	countyName int
	state      int
	date       int
	year       int
	month      int
	radiance   int
	nlSum      int
	area       int

	hasDate     bool
	hasRadiance bool
}

// Load parses the radiance file at path.
func (l *LightsLoader) Load(ctx context.Context, path string) ([]domain.RadianceObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open radiance file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("read radiance header", err).
			WithContext("path", path)
	}

	cols, err := l.resolveColumns(newColumnMap(header))
	if err != nil {
		return nil, err
	}

	var (
		observations []domain.RadianceObservation
		dropped      int
		line         = 1
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read radiance row", err).
				WithContext("path", path).
				WithContext("line", line+1)
		}
		line++

		obs, ok := l.parseRow(row, cols)
		if !ok {
			dropped++
			continue
		}
		observations = append(observations, obs)
	}

	l.logger.InfoContext(ctx, "radiance file loaded",
		slog.String("path", path),
		slog.Int("observations", len(observations)),
		slog.Int("dropped_rows", dropped))

	return observations, nil
}

func (l *LightsLoader) resolveColumns(header columnMap) (lightsColumns, error) {
	var cols lightsColumns
	var ok bool

	cols.iso = header.optional("iso", "country", "country_iso")
	cols.countyName = header.optional("name_2", "county_name", "county", "name")
	cols.state = header.optional("name_1", "state", "state_name")

	if cols.countyID, ok = header.find("id_2", "fips", "fips_code", "geoid", "county_fips"); !ok {
		return cols, apperrors.NewParsingError("radiance file has no county identifier column", nil)
	}

	if cols.date, cols.hasDate = header.find("date"); !cols.hasDate {
		yearIdx, yearOK := header.find("year")
		monthIdx, monthOK := header.find("month")
		if !yearOK || !monthOK {
			return cols, apperrors.NewParsingError(
				"radiance file needs a date column or year and month columns", nil)
		}
		cols.year, cols.month = yearIdx, monthIdx
	}

	if cols.radiance, cols.hasRadiance = header.find("avg_rad_month", "avg_rad", "radiance"); !cols.hasRadiance {
		nlIdx, nlOK := header.find("nlsum", "nl_sum")
		areaIdx, areaOK := header.find("area", "area_sq_km")
		if !nlOK || !areaOK {
			return cols, apperrors.NewParsingError(
				"radiance file needs a radiance column or nlsum and area columns", nil)
		}
		cols.nlSum, cols.area = nlIdx, areaIdx
	}

	return cols, nil
}

func (l *LightsLoader) parseRow(row []string, cols lightsColumns) (domain.RadianceObservation, bool) {
	var obs domain.RadianceObservation

	obs.CountryISO = cell(row, cols.iso)
	if obs.CountryISO == "" {
		// Single-country exports omit the ISO column.
		obs.CountryISO = "USA"
	}

	obs.CountyID = zeroPadFIPS(cell(row, cols.countyID))
	if obs.CountyID == "" {
		return obs, false
	}
	obs.CountyName = cell(row, cols.countyName)
	obs.State = cell(row, cols.state)

	if cols.hasDate {
		month, ok := parseMonthCell(row, cols.date)
		if !ok {
			return obs, false
		}
		obs.Month = month
	} else {
		year, yearOK := parseIntCell(row, cols.year)
		monthNum, monthOK := parseIntCell(row, cols.month)
		if !yearOK || !monthOK || monthNum < 1 || monthNum > 12 {
			return obs, false
		}
		obs.Month = domain.NewYearMonth(year, timeMonth(monthNum))
	}

	if cols.hasRadiance {
		radiance, ok := parseFloatCell(row, cols.radiance)
		if !ok {
			return obs, false
		}
		obs.Radiance = radiance
	} else {
		nlSum, nlOK := parseFloatCell(row, cols.nlSum)
		area, areaOK := parseFloatCell(row, cols.area)
		if !nlOK || !areaOK || area <= 0 {
			return obs, false
		}
		obs.Radiance = nlSum / area
	}

	return obs, obs.IsValid()
}
