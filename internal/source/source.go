// Package source ingests the three input files of a run: the city geocode
// dataset, the county statistics dataset, and the request list.
package source

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/georadius/internal/geoindex"
	"github.com/sells-group/georadius/internal/statstore"
)

// Datasets bundles the fully loaded, immutable inputs for one run.
type Datasets struct {
	Geo          *geoindex.Index
	Stats        *statstore.Store
	GeoSummary   *LoadSummary
	StatsSummary *LoadSummary
}

// LoadAll reads both datasets in parallel; the two builds are independent.
// Afterwards counties known to the statistics dataset get their fips copied
// onto the geo records, since the geocode schema carries no fips column.
func LoadAll(statsPath, geoPath, geoCharset string) (*Datasets, error) {
	ds := &Datasets{}

	var g errgroup.Group
	g.Go(func() error {
		idx, sum, err := LoadGeocodes(geoPath, geoCharset)
		if err != nil {
			return err
		}
		ds.Geo, ds.GeoSummary = idx, sum
		return nil
	})
	g.Go(func() error {
		st, sum, err := LoadStats(statsPath)
		if err != nil {
			return err
		}
		ds.Stats, ds.StatsSummary = st, sum
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, key := range ds.Geo.Keys() {
		if rec, ok := ds.Stats.Resolve(key, nil); ok {
			ds.Geo.SetFIPS(key, rec.FIPS)
		}
	}

	return ds, nil
}

// openCSV opens path as a CSV reader configured for the tolerant parsing
// these datasets need. A non-empty charset routes the bytes through that
// decoder first; the geocode file ships as Latin-1.
func openCSV(path, charset string) (*csv.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "source: open %s", path)
	}

	var r io.Reader = f
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			f.Close()
			return nil, nil, eris.Wrapf(err, "source: unsupported charset %q", charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader, f, nil
}
