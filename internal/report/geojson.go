package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/georadius/internal/engine"
	"github.com/sells-group/georadius/internal/geoindex"
	"github.com/sells-group/georadius/internal/model"
)

// FeatureCollection builds one point feature per fips-mapped member county,
// placed at its representative coordinate and carrying the merged batch
// value. Counties hit by several queries appear once, with the last query's
// value, matching the fips mapping.
func FeatureCollection(batch *engine.BatchResult, idx *geoindex.Index) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	pos := make(map[string]int)

	for _, res := range batch.Results {
		for _, m := range res.Members {
			if m.FIPS == "" {
				continue
			}
			key, ok := model.NewCountyKey(m.State, m.County)
			if !ok {
				continue
			}
			rec, ok := idx.Lookup(key)
			if !ok {
				continue
			}

			val := batch.ByFIPS[m.FIPS]
			props := map[string]any{
				"fips":       m.FIPS,
				"county":     rec.Name,
				"state":      m.State,
				"raw":        val.Raw,
				"population": rec.Population,
			}
			if val.Density != nil {
				props["density"] = *val.Density
			}

			f := &geojson.Feature{
				ID:         m.FIPS,
				Geometry:   geom.NewPointFlat(geom.XY, []float64{rec.Lon, rec.Lat}),
				Properties: props,
			}

			if i, seen := pos[m.FIPS]; seen {
				fc.Features[i] = f
				continue
			}
			pos[m.FIPS] = len(fc.Features)
			fc.Features = append(fc.Features, f)
		}
	}

	return fc
}

// WriteGeoJSON writes the batch as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, batch *engine.BatchResult, idx *geoindex.Index) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FeatureCollection(batch, idx)); err != nil {
		return eris.Wrap(err, "report: encode geojson")
	}
	return nil
}
