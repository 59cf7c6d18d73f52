package domain

// PanelKey identifies a firm-month. The assembler guarantees at most one
// PanelRow per key.
type PanelKey struct {
	Ticker string    `json:"ticker"`
	Month  YearMonth `json:"month"`
}

// PanelRow is one firm-month of the joined panel. BrightnessChange and
// RetFwd1M stay nil when the corresponding source series had no matching or
// defined value; incomplete rows are retained for display but excluded from
// the regression sample.
type PanelRow struct {
	Ticker           string    `json:"ticker" csv:"Ticker"`
	CountyID         string    `json:"county_id" csv:"CountyID"`
	CountyName       string    `json:"county_name,omitempty" csv:"CountyName"`
	Month            YearMonth `json:"month" csv:"Month"`
	AvgRadiance      *float64  `json:"avg_radiance" csv:"AvgRadiance"`
	BrightnessChange *float64  `json:"brightness_change" csv:"BrightnessChange"`
	MonthlyReturn    *float64  `json:"monthly_return" csv:"MonthlyReturn"`
	RetFwd1M         *float64  `json:"ret_fwd_1m" csv:"RetFwd1M"`
}

// Key returns the (ticker, month) identity of the row.
func (r PanelRow) Key() PanelKey {
	return PanelKey{Ticker: r.Ticker, Month: r.Month}
}

// Complete reports whether the row is eligible for the regression sample:
// both the regressor and the dependent variable are defined.
func (r PanelRow) Complete() bool {
	return r.BrightnessChange != nil && r.RetFwd1M != nil
}

// RejectionReason classifies why a firm or row was excluded from the panel.
type RejectionReason string

const (
	ReasonUnassignedLocation RejectionReason = "UnassignedLocation"
	ReasonMissingJoinKey     RejectionReason = "MissingJoinKey"
	ReasonMissingCoordinate  RejectionReason = "MissingCoordinate"
)

// Rejection is one entry of the data-quality rejection report. Rejections are
// recovered locally: the row is excluded and reported, never defaulted.
type Rejection struct {
	Ticker   string          `json:"ticker,omitempty" csv:"Ticker"`
	CountyID string          `json:"county_id,omitempty" csv:"CountyID"`
	Month    string          `json:"month,omitempty" csv:"Month"`
	Reason   RejectionReason `json:"reason" csv:"Reason"`
	Detail   string          `json:"detail,omitempty" csv:"Detail"`
}
