package source

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georadius/internal/model"
)

// LoadRequests parses the request list: `county, state, radius` rows after a
// header line. Unlike the datasets, this file is operator input: any
// malformed or out-of-range row is fatal for the whole batch rather than a
// skip. Extra trailing fields are ignored.
func LoadRequests(path string) ([]model.Query, error) {
	reader, closer, err := openCSV(path, "")
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "source: read request header %s", path)
	}

	var queries []model.Query
	line := 1
	for {
		rec, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "source: request row %d", line)
		}
		if len(rec) < 3 {
			return nil, eris.Errorf("source: request row %d has %d fields, want 3", line, len(rec))
		}

		radius, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "source: request row %d: parse radius %q", line, rec[2])
		}

		q := model.Query{
			County:      trimQuotes(rec[0]),
			State:       trimQuotes(rec[1]),
			RadiusMiles: radius,
		}
		if err := q.Validate(); err != nil {
			return nil, eris.Wrapf(err, "source: request row %d", line)
		}
		queries = append(queries, q)
	}

	return queries, nil
}
