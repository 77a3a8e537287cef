// Package model defines the core domain types shared across the engine:
// county identity, queries, and their validation rules.
package model

import (
	"fmt"
	"regexp"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// CountyKey identifies a county by state and name. It is the join key
// between the geocode and statistics datasets, so both fields are stored in
// canonical form: State is the uppercase two-letter USPS code, County is
// lowercased with collapsed whitespace.
type CountyKey struct {
	State  string `json:"state"`
	County string `json:"county"`
}

// NewCountyKey builds a canonical key from raw dataset or request fields.
// The state may be a two-letter code or a full state name (the statistics
// dataset uses full names, the geocode dataset uses codes). Returns false
// when either field is empty after trimming or the state cannot be
// normalized to a code.
func NewCountyKey(state, county string) (CountyKey, bool) {
	st, ok := NormalizeState(state)
	if !ok {
		return CountyKey{}, false
	}
	c := NormalizeCounty(county)
	if c == "" {
		return CountyKey{}, false
	}
	return CountyKey{State: st, County: c}, true
}

// NormalizeCounty canonicalizes a county name for matching: trim, collapse
// internal runs of whitespace, lowercase.
func NormalizeCounty(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.ToLower(name)
}

// String renders the key as "county, ST" for logs and error messages.
func (k CountyKey) String() string {
	return fmt.Sprintf("%s, %s", k.County, k.State)
}
