package geo

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// Locator maps firm headquarters coordinates to county identifiers via
// point-in-polygon containment. A coordinate outside all polygons yields an
// explicit unassigned state, never a nearest-match guess.
type Locator struct {
	logger     *slog.Logger
	boundaries []CountyBoundary
}

// NewLocator creates a locator over a loaded county boundary set.
func NewLocator(logger *slog.Logger, boundaries []CountyBoundary) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{logger: logger, boundaries: boundaries}
}

// Locate finds the county containing the given coordinate. Under a valid
// non-overlapping boundary set a point matches at most one polygon, so the
// first containment hit wins; the bounding-box check keeps the scan cheap.
func (l *Locator) Locate(lat, lon float64) (domain.County, bool) {
	point := orb.Point{lon, lat}
	for _, boundary := range l.boundaries {
		if !boundary.bound.Contains(point) {
			continue
		}
		if planar.MultiPolygonContains(boundary.Geometry, point) {
			return boundary.County, true
		}
	}
	return domain.County{}, false
}

// AssignCounties resolves each firm's HQ to a county, exactly once. Firms
// whose coordinate is missing or outside every polygon come back in the
// rejection list with an explicit reason and are excluded from panel
// construction by the caller.
func (l *Locator) AssignCounties(ctx context.Context, firms []domain.Firm) ([]domain.Firm, []domain.Rejection) {
	assigned := make([]domain.Firm, 0, len(firms))
	var rejections []domain.Rejection

	for _, firm := range firms {
		if !firm.HasCoordinate() {
			l.logger.WarnContext(ctx, "firm has no usable HQ coordinate",
				slog.String("ticker", firm.Ticker))
			rejections = append(rejections, domain.Rejection{
				Ticker: firm.Ticker,
				Reason: domain.ReasonMissingCoordinate,
				Detail: "missing or invalid HQ geocode",
			})
			continue
		}

		county, ok := l.Locate(firm.HQLatitude, firm.HQLongitude)
		if !ok {
			l.logger.WarnContext(ctx, "firm HQ outside all county polygons",
				slog.String("ticker", firm.Ticker),
				slog.Float64("lat", firm.HQLatitude),
				slog.Float64("lon", firm.HQLongitude))
			rejections = append(rejections, domain.Rejection{
				Ticker: firm.Ticker,
				Reason: domain.ReasonUnassignedLocation,
				Detail: "HQ coordinate matches no county polygon",
			})
			continue
		}

		firm.CountyID = county.ID
		firm.CountyName = county.Name
		if firm.State == "" {
			firm.State = county.State
		}
		assigned = append(assigned, firm)
	}

	l.logger.InfoContext(ctx, "county assignment complete",
		slog.Int("assigned", len(assigned)),
		slog.Int("rejected", len(rejections)))

	return assigned, rejections
}
