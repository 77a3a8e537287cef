// Package geoindex maintains one geographic record per county, folded from
// city-level rows: the representative coordinate is the most populous city's,
// the population is cumulative across all cities of the county.
package geoindex

import (
	"github.com/sells-group/georadius/internal/geodesy"
	"github.com/sells-group/georadius/internal/model"
)

// Record is the per-county view derived from city rows.
type Record struct {
	Key        model.CountyKey `json:"key"`
	Name       string          `json:"name"` // county name as spelled in the source
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	Population int64           `json:"population"`
	FIPS       string          `json:"fips,omitempty"`

	// population of the city currently providing the representative
	// coordinate; a later city replaces it only when strictly larger,
	// so ties keep the first contributor.
	repPop int64
}

// Index holds all county records. Keys iterate in insertion order so radius
// scans and exports are deterministic across runs.
type Index struct {
	records map[model.CountyKey]*Record
	keys    []model.CountyKey
}

// New returns an empty index.
func New() *Index {
	return &Index{records: make(map[model.CountyKey]*Record)}
}

// Add folds one city row into the owning county's record.
func (x *Index) Add(key model.CountyKey, name string, lat, lon float64, population int64) {
	rec, ok := x.records[key]
	if !ok {
		x.records[key] = &Record{
			Key:        key,
			Name:       name,
			Lat:        lat,
			Lon:        lon,
			Population: population,
			repPop:     population,
		}
		x.keys = append(x.keys, key)
		return
	}

	rec.Population += population
	if population > rec.repPop {
		rec.Lat = lat
		rec.Lon = lon
		rec.repPop = population
	}
}

// Lookup returns the record for a county, if one was ingested.
func (x *Index) Lookup(key model.CountyKey) (*Record, bool) {
	rec, ok := x.records[key]
	return rec, ok
}

// SetFIPS annotates a county with its fips code when a later dataset supplies
// one. The geocode schema itself carries no fips column.
func (x *Index) SetFIPS(key model.CountyKey, fips string) {
	if rec, ok := x.records[key]; ok && fips != "" {
		rec.FIPS = fips
	}
}

// WithinRadius scans every county and returns, in insertion order, those
// whose representative coordinate is at most radiusMiles from the center.
// The boundary is inclusive, so the center county itself always qualifies.
func (x *Index) WithinRadius(center *Record, radiusMiles float64) []model.CountyKey {
	var members []model.CountyKey
	for _, key := range x.keys {
		rec := x.records[key]
		if geodesy.Miles(center.Lat, center.Lon, rec.Lat, rec.Lon) <= radiusMiles {
			members = append(members, key)
		}
	}
	return members
}

// Keys returns all county keys in insertion order.
func (x *Index) Keys() []model.CountyKey {
	return x.keys
}

// Len returns the number of counties indexed.
func (x *Index) Len() int {
	return len(x.keys)
}
