package domain

// County is the stable identity of a US county. The ID is the 5-digit FIPS
// code, matching the county identifier carried by the brightness source; the
// boundary geometry itself lives in the geo package.
type County struct {
	ID    string `json:"id" csv:"CountyID"`
	Name  string `json:"name" csv:"CountyName"`
	State string `json:"state" csv:"State"`
}

// IsValid checks the county has a usable identifier.
func (c County) IsValid() bool {
	return c.ID != ""
}
