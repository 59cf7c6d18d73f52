package domain

// Firm is an S&P 500 constituent with its headquarters coordinate. CountyID
// is assigned exactly once by the locator stage and is immutable afterwards;
// an empty CountyID means the HQ matched no county polygon.
type Firm struct {
	Ticker      string  `json:"ticker" csv:"Ticker"`
	CompanyName string  `json:"company_name,omitempty" csv:"CompanyName"`
	State       string  `json:"state,omitempty" csv:"State"`
	HQLatitude  float64 `json:"hq_latitude" csv:"HQLatitude"`
	HQLongitude float64 `json:"hq_longitude" csv:"HQLongitude"`
	CountyID    string  `json:"county_id,omitempty" csv:"CountyID"`
	CountyName  string  `json:"county_name,omitempty" csv:"CountyName"`
}

// Assigned reports whether the locator resolved the HQ to a county.
func (f Firm) Assigned() bool {
	return f.CountyID != ""
}

// HasCoordinate reports whether the HQ coordinate is within plausible bounds.
// (0, 0) is treated as a missing geocode, not a point in the Gulf of Guinea.
func (f Firm) HasCoordinate() bool {
	if f.HQLatitude == 0 && f.HQLongitude == 0 {
		return false
	}
	return f.HQLatitude >= -90 && f.HQLatitude <= 90 &&
		f.HQLongitude >= -180 && f.HQLongitude <= 180
}
