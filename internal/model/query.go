package model

import "github.com/rotisserie/eris"

// MaxRadiusMiles bounds query radii. A request at or above this value is a
// fatal input error for the whole batch, not a per-query skip.
const MaxRadiusMiles = 1000.0

// Query asks for an aggregate over every county whose representative
// coordinate lies within RadiusMiles of the target county. County and State
// hold the raw request fields; Key normalizes them.
type Query struct {
	County      string  `json:"county"`
	State       string  `json:"state"`
	RadiusMiles float64 `json:"radius_miles"`
}

// Key returns the canonical CountyKey for the query target.
func (q Query) Key() (CountyKey, bool) {
	return NewCountyKey(q.State, q.County)
}

// Validate checks the radius range [0, MaxRadiusMiles). A NaN radius fails
// the range check too.
func (q Query) Validate() error {
	if !(q.RadiusMiles >= 0 && q.RadiusMiles < MaxRadiusMiles) {
		return eris.Errorf("model: radius %v out of range [0, %v)", q.RadiusMiles, MaxRadiusMiles)
	}
	return nil
}
