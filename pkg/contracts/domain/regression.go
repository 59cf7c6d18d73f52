package domain

// ClusterBy selects how regression standard errors are grouped. The unclustered
// baseline assumes i.i.d. errors; clustering is an explicit configuration
// choice, never an implicit default.
type ClusterBy string

const (
	ClusterNone      ClusterBy = "none"
	ClusterTicker    ClusterBy = "ticker"
	ClusterCounty    ClusterBy = "county"
	ClusterYearMonth ClusterBy = "yearmonth"
)

// IsValid checks the clustering choice is one of the supported groupings.
func (c ClusterBy) IsValid() bool {
	switch c {
	case ClusterNone, ClusterTicker, ClusterCounty, ClusterYearMonth:
		return true
	}
	return false
}

// RegressionResult holds the fitted one-way fixed-effects model. It is
// immutable once produced and recomputed whenever the input panel changes.
type RegressionResult struct {
	Coefficient       float64   `json:"coefficient_on_brightness_change"`
	StdErr            float64   `json:"standard_error"`
	TStat             float64   `json:"t_stat"`
	RSquared          float64   `json:"r_squared"`
	NObs              int       `json:"n_observations"`
	FixedEffectLevels int       `json:"fixed_effect_levels"`
	DroppedSingletons int       `json:"dropped_singleton_groups"`
	ClusterBy         ClusterBy `json:"cluster_by"`
	NClusters         int       `json:"n_clusters,omitempty"`
}
