package source

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georadius/internal/geoindex"
	"github.com/sells-group/georadius/internal/model"
)

// Fixed column positions of the city geocode schema. The layout is a
// documented constant of the source, not auto-detected.
const (
	geoColState      = 2
	geoColLat        = 3
	geoColLon        = 4
	geoColCounty     = 5
	geoColPopulation = 10
	geoFieldCount    = 12
)

// LoadGeocodes builds the county geo index from the city-level geocode CSV.
// The header row is skipped. Short rows are dropped: the trailing free-text
// notes column is not always quoted cleanly. Rows with empty state or county
// are silently dropped, population parses leniently to zero, and rows whose
// coordinates do not parse are skipped since they cannot anchor a county.
func LoadGeocodes(path, charset string) (*geoindex.Index, *LoadSummary, error) {
	reader, closer, err := openCSV(path, charset)
	if err != nil {
		return nil, nil, err
	}
	defer closer.Close()

	log := zap.L().With(zap.String("component", "source.geocode"))

	if _, err := reader.Read(); err != nil {
		return nil, nil, eris.Wrapf(err, "source: read geocode header %s", path)
	}

	idx := geoindex.New()
	sum := &LoadSummary{Path: path}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			sum.SkippedParse++
			continue
		}
		sum.RowsRead++

		if len(rec) < geoFieldCount {
			sum.SkippedWidth++
			log.Debug("short geocode row", zap.Int("fields", len(rec)))
			continue
		}

		state := trimQuotes(rec[geoColState])
		county := trimQuotes(rec[geoColCounty])
		if state == "" || county == "" {
			sum.SkippedName++
			continue
		}

		key, ok := model.NewCountyKey(state, county)
		if !ok {
			sum.SkippedState++
			log.Debug("geocode state not recognized", zap.String("state", state))
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[geoColLat]), 64)
		if err != nil {
			sum.SkippedParse++
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[geoColLon]), 64)
		if err != nil {
			sum.SkippedParse++
			continue
		}

		idx.Add(key, county, lat, lon, parseInt64Or(rec[geoColPopulation], 0))
		sum.RowsLoaded++
	}

	log.Info("geocode dataset loaded",
		zap.String("path", path),
		zap.Int("counties", idx.Len()),
		zap.Int("rows_read", sum.RowsRead),
		zap.Int("rows_loaded", sum.RowsLoaded),
		zap.Int("skipped", sum.Skipped()),
	)

	return idx, sum, nil
}
