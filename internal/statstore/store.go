// Package statstore holds per-county, per-date statistic records. Statistic
// names are not hardcoded: they arrive with the dataset header, so new
// columns are picked up automatically.
package statstore

import (
	"strings"
	"time"

	"github.com/sells-group/georadius/internal/model"
)

const dateLayout = "2006-01-02"

// Record is one (county, date) observation.
type Record struct {
	Key    model.CountyKey
	Date   time.Time
	FIPS   string
	Values map[string]float64
}

// Value returns the named statistic from this record. Absence is a zero
// contribution for the caller, never an error.
func (r *Record) Value(name string) (float64, bool) {
	v, ok := r.Values[canonicalStat(name)]
	return v, ok
}

// Store indexes records by county and date and tracks the latest record per
// county for date-less resolution.
type Store struct {
	statNames []string
	statIdx   map[string]int

	byCounty map[model.CountyKey]map[string]*Record
	latest   map[model.CountyKey]*Record

	rows             int
	minDate, maxDate time.Time
}

// New builds an empty store for the given ordered statistic names, as
// declared by the dataset header after its fixed columns.
func New(statNames []string) *Store {
	s := &Store{
		statIdx:  make(map[string]int, len(statNames)),
		byCounty: make(map[model.CountyKey]map[string]*Record),
		latest:   make(map[model.CountyKey]*Record),
	}
	for _, name := range statNames {
		name = canonicalStat(name)
		if name == "" {
			continue
		}
		if _, dup := s.statIdx[name]; dup {
			continue
		}
		s.statIdx[name] = len(s.statNames)
		s.statNames = append(s.statNames, name)
	}
	return s
}

// Add ingests one observation. A second row for the same (county, date)
// replaces the first.
func (s *Store) Add(key model.CountyKey, date time.Time, fips string, values map[string]float64) {
	rec := &Record{Key: key, Date: date, FIPS: fips, Values: values}

	dates, ok := s.byCounty[key]
	if !ok {
		dates = make(map[string]*Record)
		s.byCounty[key] = dates
	}
	dates[date.Format(dateLayout)] = rec

	if latest, ok := s.latest[key]; !ok || !date.Before(latest.Date) {
		s.latest[key] = rec
	}

	if s.rows == 0 || date.Before(s.minDate) {
		s.minDate = date
	}
	if s.rows == 0 || date.After(s.maxDate) {
		s.maxDate = date
	}
	s.rows++
}

// Resolve returns the record for a county. With a target date an exact match
// is required; otherwise the record with the maximum observed date is used.
// Absence is not an error: the caller treats it as a zero contribution.
func (s *Store) Resolve(key model.CountyKey, at *time.Time) (*Record, bool) {
	if at != nil {
		dates, ok := s.byCounty[key]
		if !ok {
			return nil, false
		}
		rec, ok := dates[at.Format(dateLayout)]
		return rec, ok
	}
	rec, ok := s.latest[key]
	return rec, ok
}

// HasStat reports whether the dataset header declared the statistic.
func (s *Store) HasStat(name string) bool {
	_, ok := s.statIdx[canonicalStat(name)]
	return ok
}

// StatNames returns the header-declared statistic names in column order.
func (s *Store) StatNames() []string {
	return s.statNames
}

// DateRange returns the span of observed dates. ok is false for an empty
// store.
func (s *Store) DateRange() (min, max time.Time, ok bool) {
	if s.rows == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.minDate, s.maxDate, true
}

// Counties returns the number of distinct counties with records.
func (s *Store) Counties() int {
	return len(s.byCounty)
}

// Rows returns the number of ingested observations.
func (s *Store) Rows() int {
	return s.rows
}

func canonicalStat(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
