// Package engine joins resolved regions against the statistics store and
// produces per-query aggregates plus the merged fips-keyed batch output.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georadius/internal/geodesy"
	"github.com/sells-group/georadius/internal/geoindex"
	"github.com/sells-group/georadius/internal/model"
	"github.com/sells-group/georadius/internal/region"
	"github.com/sells-group/georadius/internal/statstore"
)

const dateLayout = "2006-01-02"

// ErrUnknownStatistic is returned when a requested statistic name does not
// appear in the loaded dataset's header.
var ErrUnknownStatistic = eris.New("statistic not in dataset")

// Member is one county inside a query's resolved region.
type Member struct {
	County        string  `json:"county"`
	State         string  `json:"state"`
	FIPS          string  `json:"fips,omitempty"`
	Value         float64 `json:"value"`
	DistanceMiles float64 `json:"distance_miles"`
	Population    int64   `json:"population"`
}

// Result is the aggregate outcome for a single query. Density is per 100k
// population and nil when the region's total population is zero: undefined,
// not a computed zero.
type Result struct {
	Query           model.Query `json:"query"`
	Statistic       string      `json:"statistic"`
	TargetDate      string      `json:"target_date,omitempty"`
	Members         []Member    `json:"members"`
	RawTotal        float64     `json:"raw_total"`
	TotalPopulation int64       `json:"total_population"`
	Density         *float64    `json:"density,omitempty"`
}

// FIPSValue is the rendered value attached to one county in the merged batch
// output. All members of one query share the same pair.
type FIPSValue struct {
	Raw     float64  `json:"raw"`
	Density *float64 `json:"density,omitempty"`
}

// BatchResult holds the per-query results and the merged fips mapping for a
// whole request list.
type BatchResult struct {
	RunID       string               `json:"run_id"`
	Statistic   string               `json:"statistic"`
	TargetDate  string               `json:"target_date,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Results     []*Result            `json:"results"`
	ByFIPS      map[string]FIPSValue `json:"by_fips"`
}

// Engine evaluates queries against immutable geo and statistics indexes.
type Engine struct {
	geo      *geoindex.Index
	stats    *statstore.Store
	resolver *region.Resolver
}

// New builds an engine over fully loaded indexes.
func New(geo *geoindex.Index, stats *statstore.Store) *Engine {
	return &Engine{geo: geo, stats: stats, resolver: region.New(geo)}
}

// Stats exposes the underlying statistics store for read-only inspection.
func (e *Engine) Stats() *statstore.Store {
	return e.stats
}

// Geo exposes the underlying geo index for read-only inspection.
func (e *Engine) Geo() *geoindex.Index {
	return e.geo
}

// Aggregate evaluates one query. Counties absent from the statistics store
// contribute zero to the raw total but their population still counts, so
// density denominators are never silently shrunk by missing data.
func (e *Engine) Aggregate(q model.Query, statistic string, at *time.Time) (*Result, error) {
	stat := canonicalStat(statistic)
	if !e.stats.HasStat(stat) {
		return nil, eris.Wrapf(ErrUnknownStatistic, "engine: statistic %q (have: %s)",
			stat, strings.Join(e.stats.StatNames(), ", "))
	}

	reg, err := e.resolver.Resolve(q)
	if err != nil {
		return nil, eris.Wrap(err, "engine: resolve region")
	}

	res := &Result{
		Query:     q,
		Statistic: stat,
		Members:   make([]Member, 0, len(reg.Members)),
	}
	if at != nil {
		res.TargetDate = at.Format(dateLayout)
	}

	for _, key := range reg.Members {
		rec, ok := e.geo.Lookup(key)
		if !ok {
			continue
		}

		member := Member{
			County:        rec.Name,
			State:         key.State,
			Population:    rec.Population,
			DistanceMiles: geodesy.Miles(reg.Target.Lat, reg.Target.Lon, rec.Lat, rec.Lon),
		}
		res.TotalPopulation += rec.Population

		if statRec, ok := e.stats.Resolve(key, at); ok {
			member.FIPS = statRec.FIPS
			if v, ok := statRec.Value(stat); ok {
				member.Value = v
				res.RawTotal += v
			}
		} else {
			zap.L().Debug("member has no statistics, counting population only",
				zap.String("county", key.String()),
			)
		}

		res.Members = append(res.Members, member)
	}

	res.Density = densityPer100K(res.RawTotal, res.TotalPopulation)
	return res, nil
}

// Run evaluates a batch of queries in input order and merges their outputs
// into one fips-keyed mapping. Overlapping member sets are resolved
// last-writer-wins, so input order fixes the result. Any fatal query error
// aborts the whole batch with no partial output.
func (e *Engine) Run(ctx context.Context, queries []model.Query, statistic string, at *time.Time) (*BatchResult, error) {
	stat := canonicalStat(statistic)
	if !e.stats.HasStat(stat) {
		return nil, eris.Wrapf(ErrUnknownStatistic, "engine: statistic %q (have: %s)",
			stat, strings.Join(e.stats.StatNames(), ", "))
	}

	batch := &BatchResult{
		RunID:       uuid.New().String(),
		Statistic:   stat,
		GeneratedAt: time.Now().UTC(),
		Results:     make([]*Result, 0, len(queries)),
		ByFIPS:      make(map[string]FIPSValue),
	}
	if at != nil {
		batch.TargetDate = at.Format(dateLayout)
	}

	log := zap.L().With(zap.String("component", "engine"), zap.String("run_id", batch.RunID))
	log.Info("starting batch",
		zap.Int("queries", len(queries)),
		zap.String("statistic", stat),
		zap.String("target_date", batch.TargetDate),
	)

	for i, q := range queries {
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "engine: batch cancelled")
		default:
		}

		res, err := e.Aggregate(q, stat, at)
		if err != nil {
			return nil, eris.Wrapf(err, "engine: query %d (%s, %s)", i+1, q.County, q.State)
		}

		for _, m := range res.Members {
			if m.FIPS == "" {
				continue
			}
			batch.ByFIPS[m.FIPS] = FIPSValue{Raw: res.RawTotal, Density: res.Density}
		}
		batch.Results = append(batch.Results, res)

		log.Info("query aggregated",
			zap.String("target", q.County+", "+q.State),
			zap.Float64("radius_miles", q.RadiusMiles),
			zap.Int("members", len(res.Members)),
			zap.Float64("raw_total", res.RawTotal),
			zap.Int64("population", res.TotalPopulation),
		)
	}

	log.Info("batch complete", zap.Int("fips_mapped", len(batch.ByFIPS)))
	return batch, nil
}

func densityPer100K(raw float64, population int64) *float64 {
	if population == 0 {
		return nil
	}
	d := raw / (float64(population) / 100000.0)
	return &d
}

func canonicalStat(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
