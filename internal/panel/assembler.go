package panel

import (
	"context"
	"log/slog"
	"sort"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Assembler joins the brightness series, the firm-county assignments, and the
// return series into one firm-month panel keyed by (ticker, month).
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates a new panel assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Result carries the assembled panel and the data-quality rejections
// recovered during the join.
type Result struct {
	Rows       []domain.PanelRow
	Rejections []domain.Rejection
}

// countyMonth keys the brightness lookup side of the join.
type countyMonth struct {
	countyID string
	month    domain.YearMonth
}

// Assemble builds the firm-month panel. Rows lacking a matching brightness
// change or forward return are retained with explicit nils so downstream
// consumers choose their own inclusion criteria; firms that join nothing at
// all are recorded as rejections. A duplicate key on either source table is
// fatal, never silently resolved.
func (a *Assembler) Assemble(
	ctx context.Context,
	firms []domain.Firm,
	brightness []domain.BrightnessChange,
	returnSeries []domain.ReturnRecord,
) (*Result, error) {
	a.logger.InfoContext(ctx, "assembling firm-month panel",
		slog.Int("firms", len(firms)),
		slog.Int("brightness_county_months", len(brightness)),
		slog.Int("return_records", len(returnSeries)))

	brightnessByKey := make(map[countyMonth]domain.BrightnessChange, len(brightness))
	countiesWithData := make(map[string]bool)
	for _, bc := range brightness {
		key := countyMonth{countyID: bc.CountyID, month: bc.Month}
		if _, exists := brightnessByKey[key]; exists {
			return nil, apperrors.NewDuplicateKeyError("brightness",
				bc.CountyID+"/"+bc.Month.String())
		}
		brightnessByKey[key] = bc
		countiesWithData[bc.CountyID] = true
	}

	returnsByTicker := make(map[string][]domain.ReturnRecord)
	seenReturn := make(map[domain.PanelKey]bool, len(returnSeries))
	for _, rec := range returnSeries {
		key := domain.PanelKey{Ticker: rec.Ticker, Month: rec.Month}
		if seenReturn[key] {
			return nil, apperrors.NewDuplicateKeyError("returns",
				rec.Ticker+"/"+rec.Month.String())
		}
		seenReturn[key] = true
		returnsByTicker[rec.Ticker] = append(returnsByTicker[rec.Ticker], rec)
	}

	seenFirm := make(map[string]bool, len(firms))
	result := &Result{}

	for _, firm := range firms {
		if seenFirm[firm.Ticker] {
			return nil, apperrors.NewDuplicateKeyError("firms", firm.Ticker)
		}
		seenFirm[firm.Ticker] = true

		if !firm.Assigned() {
			// Unassigned firms never reach the panel; the locator reports
			// them, this is a backstop for callers skipping that stage.
			result.Rejections = append(result.Rejections, domain.Rejection{
				Ticker: firm.Ticker,
				Reason: domain.ReasonUnassignedLocation,
				Detail: "firm has no county assignment",
			})
			continue
		}

		series, ok := returnsByTicker[firm.Ticker]
		if !ok {
			result.Rejections = append(result.Rejections, domain.Rejection{
				Ticker:   firm.Ticker,
				CountyID: firm.CountyID,
				Reason:   domain.ReasonMissingJoinKey,
				Detail:   "ticker absent from return series",
			})
			continue
		}

		if !countiesWithData[firm.CountyID] {
			result.Rejections = append(result.Rejections, domain.Rejection{
				Ticker:   firm.Ticker,
				CountyID: firm.CountyID,
				Reason:   domain.ReasonMissingJoinKey,
				Detail:   "county absent from brightness series",
			})
			continue
		}

		for _, rec := range series {
			row := domain.PanelRow{
				Ticker:     firm.Ticker,
				CountyID:   firm.CountyID,
				CountyName: firm.CountyName,
				Month:      rec.Month,
				RetFwd1M:   rec.RetFwd1M,
			}
			monthlyReturn := rec.MonthlyReturn
			row.MonthlyReturn = &monthlyReturn

			if bc, ok := brightnessByKey[countyMonth{countyID: firm.CountyID, month: rec.Month}]; ok {
				avg := bc.AvgRadiance
				row.AvgRadiance = &avg
				row.BrightnessChange = bc.Change
			}

			result.Rows = append(result.Rows, row)
		}
	}

	sort.Slice(result.Rows, func(i, j int) bool {
		if result.Rows[i].Ticker != result.Rows[j].Ticker {
			return result.Rows[i].Ticker < result.Rows[j].Ticker
		}
		return result.Rows[i].Month.Before(result.Rows[j].Month)
	})

	complete := 0
	for _, row := range result.Rows {
		if row.Complete() {
			complete++
		}
	}

	a.logger.InfoContext(ctx, "panel assembled",
		slog.Int("rows", len(result.Rows)),
		slog.Int("complete_rows", complete),
		slog.Int("rejections", len(result.Rejections)))

	return result, nil
}

// CompleteRows returns the regression-eligible subset of the panel: rows with
// both a defined brightness change and a defined forward return.
func CompleteRows(rows []domain.PanelRow) []domain.PanelRow {
	complete := make([]domain.PanelRow, 0, len(rows))
	for _, row := range rows {
		if row.Complete() {
			complete = append(complete, row)
		}
	}
	return complete
}
