package domain

// RadianceObservation is a single raw satellite reading: one grid point or
// sub-county measurement tagged with the county it falls in and the calendar
// month it was taken.
type RadianceObservation struct {
	CountryISO string    `json:"iso"`
	CountyID   string    `json:"county_id"`
	CountyName string    `json:"county_name,omitempty"`
	State      string    `json:"state,omitempty"`
	Month      YearMonth `json:"month"`
	Radiance   float64   `json:"radiance"`
}

// IsValid checks the observation carries the fields the aggregator joins on.
func (o RadianceObservation) IsValid() bool {
	return o.CountyID != "" && o.Month.IsValid() && o.Radiance >= 0
}

// BrightnessRecord is the county-month mean radiance. At most one record
// exists per (county, month); the aggregator enforces this.
type BrightnessRecord struct {
	CountyID    string    `json:"county_id" csv:"CountyID"`
	CountyName  string    `json:"county_name,omitempty" csv:"CountyName"`
	State       string    `json:"state,omitempty" csv:"State"`
	Month       YearMonth `json:"month" csv:"Month"`
	AvgRadiance float64   `json:"avg_radiance" csv:"AvgRadiance"`
	NumReadings int       `json:"num_readings" csv:"NumReadings"`
}

// BrightnessChange extends a BrightnessRecord with the month-over-month first
// difference of mean radiance. Change is nil for a county's first observed
// month and at gap boundaries; a nil Change is never interpolated away.
type BrightnessChange struct {
	BrightnessRecord
	Change *float64 `json:"brightness_change"`
}
