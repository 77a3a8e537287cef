package report

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/georadius/internal/engine"
)

// Legend is the human-readable per-query summary of a batch.
type Legend struct {
	RunID       string        `yaml:"run_id"`
	GeneratedAt time.Time     `yaml:"generated_at"`
	Statistic   string        `yaml:"statistic"`
	TargetDate  string        `yaml:"target_date,omitempty"`
	Queries     []LegendQuery `yaml:"queries"`
}

// LegendQuery summarizes one query: its target, radius, member set, and
// totals.
type LegendQuery struct {
	County          string   `yaml:"county"`
	State           string   `yaml:"state"`
	RadiusMiles     float64  `yaml:"radius_miles"`
	MemberCount     int      `yaml:"member_count"`
	Members         []string `yaml:"members"`
	RawTotal        float64  `yaml:"raw_total"`
	TotalPopulation int64    `yaml:"total_population"`
	Density         *float64 `yaml:"density,omitempty"`
}

// BuildLegend assembles the legend view of a batch.
func BuildLegend(batch *engine.BatchResult) *Legend {
	l := &Legend{
		RunID:       batch.RunID,
		GeneratedAt: batch.GeneratedAt,
		Statistic:   batch.Statistic,
		TargetDate:  batch.TargetDate,
		Queries:     make([]LegendQuery, 0, len(batch.Results)),
	}

	for _, res := range batch.Results {
		q := LegendQuery{
			County:          res.Query.County,
			State:           res.Query.State,
			RadiusMiles:     res.Query.RadiusMiles,
			MemberCount:     len(res.Members),
			Members:         make([]string, 0, len(res.Members)),
			RawTotal:        res.RawTotal,
			TotalPopulation: res.TotalPopulation,
			Density:         res.Density,
		}
		for _, m := range res.Members {
			q.Members = append(q.Members, m.County+", "+m.State)
		}
		l.Queries = append(l.Queries, q)
	}

	return l
}

// WriteLegend writes the legend as YAML.
func WriteLegend(w io.Writer, batch *engine.BatchResult) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(BuildLegend(batch)); err != nil {
		return eris.Wrap(err, "report: encode legend")
	}
	return nil
}
