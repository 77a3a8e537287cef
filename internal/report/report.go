// Package report renders batch results into the artifacts downstream
// consumers take away: the fips-keyed JSON feed, a GeoJSON overlay for map
// renderers, and a YAML legend for human inspection.
package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georadius/internal/engine"
)

// WriteJSON writes the merged fips -> (raw, density) mapping as indented
// JSON. This is the primary machine-readable output of a batch run.
func WriteJSON(w io.Writer, batch *engine.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch.ByFIPS); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

// WriteResults writes the full per-query results, including member details,
// as indented JSON.
func WriteResults(w io.Writer, batch *engine.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		return eris.Wrap(err, "report: encode results")
	}
	return nil
}
