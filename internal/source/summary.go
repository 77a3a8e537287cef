package source

// LoadSummary reports ingest counters for one dataset file. Skips are
// tolerated conditions: they shape the counters, never the error return.
type LoadSummary struct {
	Path         string `json:"path"`
	RowsRead     int    `json:"rows_read"`
	RowsLoaded   int    `json:"rows_loaded"`
	SkippedWidth int    `json:"skipped_width"` // wrong column count
	SkippedName  int    `json:"skipped_name"`  // empty county or state
	SkippedState int    `json:"skipped_state"` // state not normalizable
	SkippedParse int    `json:"skipped_parse"` // unparseable coordinate or date
}

// Skipped returns the total number of dropped rows.
func (s *LoadSummary) Skipped() int {
	return s.SkippedWidth + s.SkippedName + s.SkippedState + s.SkippedParse
}
