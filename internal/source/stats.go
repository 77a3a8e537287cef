package source

import (
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georadius/internal/model"
	"github.com/sells-group/georadius/internal/statstore"
)

const dateLayout = "2006-01-02"

// Fixed leading columns of the statistics schema; everything after them is
// a header-declared statistic column.
var statsHeaderPrefix = [...]string{"date", "county", "state", "fips"}

const (
	statsColDate   = 0
	statsColCounty = 1
	statsColState  = 2
	statsColFIPS   = 3
	statsFixedCols = len(statsHeaderPrefix)
)

// ParseStatsHeader validates the fixed leading columns and returns the
// statistic names declared after them, lowercased, in column order.
func ParseStatsHeader(header []string) ([]string, error) {
	if len(header) < statsFixedCols {
		return nil, eris.Errorf("source: statistics header has %d columns, want at least %d",
			len(header), statsFixedCols)
	}
	for i, want := range statsHeaderPrefix {
		if got := strings.ToLower(trimQuotes(header[i])); got != want {
			return nil, eris.Errorf("source: statistics header column %d is %q, want %q",
				i, header[i], want)
		}
	}

	names := make([]string, 0, len(header)-statsFixedCols)
	for _, col := range header[statsFixedCols:] {
		names = append(names, strings.ToLower(trimQuotes(col)))
	}
	return names, nil
}

// LoadStats builds the statistics store from the county time-series CSV.
// The header drives the statistic set. States arrive as full names and are
// normalized to codes for the join; rows that cannot be normalized, rows
// with empty names, wrong widths, or unparseable dates are skipped. Missing
// statistic values parse as zero.
func LoadStats(path string) (*statstore.Store, *LoadSummary, error) {
	reader, closer, err := openCSV(path, "")
	if err != nil {
		return nil, nil, err
	}
	defer closer.Close()

	log := zap.L().With(zap.String("component", "source.stats"))

	header, err := reader.Read()
	if err != nil {
		return nil, nil, eris.Wrapf(err, "source: read statistics header %s", path)
	}
	names, err := ParseStatsHeader(header)
	if err != nil {
		return nil, nil, err
	}

	store := statstore.New(names)
	sum := &LoadSummary{Path: path}
	width := statsFixedCols + len(names)

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

		if len(rec) != width {
			sum.SkippedWidth++
			log.Debug("statistics row width mismatch",
				zap.Int("fields", len(rec)), zap.Int("want", width))
			continue
		}

		county := trimQuotes(rec[statsColCounty])
		state := trimQuotes(rec[statsColState])
		if county == "" || state == "" {
			sum.SkippedName++
			continue
		}

		key, ok := model.NewCountyKey(state, county)
		if !ok {
			sum.SkippedState++
			log.Debug("statistics state not recognized", zap.String("state", state))
			continue
		}

		date, err := time.Parse(dateLayout, trimQuotes(rec[statsColDate]))
		if err != nil {
			sum.SkippedParse++
			log.Debug("statistics date not parseable", zap.String("date", rec[statsColDate]))
			continue
		}

		values := make(map[string]float64, len(names))
		for i, name := range names {
			values[name] = parseFloat64Or(rec[statsFixedCols+i], 0)
		}

		store.Add(key, date, trimQuotes(rec[statsColFIPS]), values)
		sum.RowsLoaded++
	}

	log.Info("statistics dataset loaded",
		zap.String("path", path),
		zap.Strings("statistics", store.StatNames()),
		zap.Int("counties", store.Counties()),
		zap.Int("rows_read", sum.RowsRead),
		zap.Int("rows_loaded", sum.RowsLoaded),
		zap.Int("skipped", sum.Skipped()),
	)

	return store, sum, nil
}
