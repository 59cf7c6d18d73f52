package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	apperrors "github.com/rchrostowski/elorevnightlightproject/internal/errors"
	"github.com/rchrostowski/elorevnightlightproject/pkg/contracts/domain"
)

// CountyBoundary pairs a county's identity with its boundary geometry.
type CountyBoundary struct {
	County   domain.County
	Geometry orb.MultiPolygon
	bound    orb.Bound
}

// Bound returns the geometry's bounding box, used as a cheap pre-filter
// before the exact containment test.
func (cb CountyBoundary) Bound() orb.Bound {
	return cb.bound
}

// LoadBoundaries reads a GeoJSON feature collection of county polygons. The
// feature properties must carry the county FIPS identifier matching the
// brightness source's county IDs; name and state are optional metadata.
func LoadBoundaries(path string) ([]CountyBoundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read county boundary file", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse county boundary GeoJSON", err)
	}

	boundaries := make([]CountyBoundary, 0, len(fc.Features))
	seen := make(map[string]bool, len(fc.Features))

	for i, feature := range fc.Features {
		id := featureProperty(feature, "GEOID", "geoid", "fips", "FIPS", "id")
		if id == "" {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("county feature %d has no FIPS identifier property", i), nil)
		}
		if seen[id] {
			return nil, apperrors.NewDuplicateKeyError("county boundaries", id)
		}
		seen[id] = true

		geometry, err := asMultiPolygon(feature.Geometry)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("county %s has unsupported geometry", id), err)
		}

		boundaries = append(boundaries, CountyBoundary{
			County: domain.County{
				ID:    id,
				Name:  featureProperty(feature, "NAME", "name"),
				State: featureProperty(feature, "STUSPS", "STATE", "state"),
			},
			Geometry: geometry,
			bound:    geometry.Bound(),
		})
	}

	return boundaries, nil
}

// featureProperty returns the first present string property among candidates.
func featureProperty(feature *geojson.Feature, keys ...string) string {
	for _, key := range keys {
		if value, ok := feature.Properties[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// asMultiPolygon normalizes polygon and multipolygon geometries.
func asMultiPolygon(geometry orb.Geometry) (orb.MultiPolygon, error) {
	switch g := geometry.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	default:
		return nil, fmt.Errorf("geometry type %s is not a polygon", geometry.GeoJSONType())
	}
}
