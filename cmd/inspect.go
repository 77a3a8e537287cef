package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/georadius/internal/source"
)

var (
	inspectStats    string
	inspectGeocodes string
)

type inspectSummary struct {
	Geocodes     *source.LoadSummary `json:"geocodes"`
	Statistics   *source.LoadSummary `json:"statistics"`
	Counties     int                 `json:"counties"`
	StatCounties int                 `json:"stat_counties"`
	StatRows     int                 `json:"stat_rows"`
	StatNames    []string            `json:"stat_names"`
	DateRange    *inspectDateRange   `json:"date_range,omitempty"`
	Joined       int                 `json:"joined_counties"`
}

type inspectDateRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load both datasets and summarize what joined",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectStats != "" {
			cfg.Datasets.StatsPath = inspectStats
		}
		if inspectGeocodes != "" {
			cfg.Datasets.GeocodePath = inspectGeocodes
		}
		if err := cfg.Validate("inspect"); err != nil {
			return err
		}

		ds, err := source.LoadAll(cfg.Datasets.StatsPath, cfg.Datasets.GeocodePath, cfg.Datasets.GeocodeCharset)
		if err != nil {
			return eris.Wrap(err, "inspect: load datasets")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(buildInspectSummary(ds))
	},
}

func buildInspectSummary(ds *source.Datasets) inspectSummary {
	s := inspectSummary{
		Geocodes:     ds.GeoSummary,
		Statistics:   ds.StatsSummary,
		Counties:     ds.Geo.Len(),
		StatCounties: ds.Stats.Counties(),
		StatRows:     ds.Stats.Rows(),
		StatNames:    ds.Stats.StatNames(),
	}
	if first, last, ok := ds.Stats.DateRange(); ok {
		s.DateRange = &inspectDateRange{
			Min: first.Format("2006-01-02"),
			Max: last.Format("2006-01-02"),
		}
	}

	// Counties that can anchor a query AND carry statistics.
	for _, key := range ds.Geo.Keys() {
		if _, ok := ds.Stats.Resolve(key, nil); ok {
			s.Joined++
		}
	}
	return s
}

func init() {
	inspectCmd.Flags().StringVar(&inspectStats, "stats", "", "statistics CSV path (default from config)")
	inspectCmd.Flags().StringVar(&inspectGeocodes, "geocodes", "", "geocode CSV path (default from config)")
	rootCmd.AddCommand(inspectCmd)
}
