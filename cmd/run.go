package main

import (
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/georadius/internal/engine"
	"github.com/sells-group/georadius/internal/report"
	"github.com/sells-group/georadius/internal/source"
)

var (
	runStats     string
	runGeocodes  string
	runRequests  string
	runStatistic string
	runDate      string
	runOut       string
	runGeoJSON   string
	runLegend    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate a statistic for a batch of county-radius requests",
	Long: `Reads a request list of (county, state, radius) rows, aggregates the chosen
statistic over every county within each radius, and writes the merged
fips-keyed result.

Examples:
  # Latest data per county, result to stdout
  georadius run --requests requests.csv --statistic cases

  # A fixed date, all artifacts to files
  georadius run --requests requests.csv --statistic deaths --date 2020-11-01 \
    --out by_fips.json --geojson points.geojson --legend legend.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if runStats != "" {
			cfg.Datasets.StatsPath = runStats
		}
		if runGeocodes != "" {
			cfg.Datasets.GeocodePath = runGeocodes
		}
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		var at *time.Time
		if runDate != "" {
			parsed, err := time.Parse("2006-01-02", runDate)
			if err != nil {
				return eris.Wrapf(err, "run: parse --date %q", runDate)
			}
			at = &parsed
		}

		queries, err := source.LoadRequests(runRequests)
		if err != nil {
			return eris.Wrap(err, "run: load requests")
		}
		for i, q := range queries {
			if q.RadiusMiles >= cfg.Engine.MaxRadiusMiles {
				return eris.Errorf("run: request %d: radius %v exceeds the configured maximum %v",
					i+1, q.RadiusMiles, cfg.Engine.MaxRadiusMiles)
			}
		}

		ds, err := source.LoadAll(cfg.Datasets.StatsPath, cfg.Datasets.GeocodePath, cfg.Datasets.GeocodeCharset)
		if err != nil {
			return eris.Wrap(err, "run: load datasets")
		}

		eng := engine.New(ds.Geo, ds.Stats)
		batch, err := eng.Run(ctx, queries, runStatistic, at)
		if err != nil {
			return eris.Wrap(err, "run: batch")
		}

		if runGeoJSON != "" {
			err := writeArtifact(runGeoJSON, func(w io.Writer) error {
				return report.WriteGeoJSON(w, batch, ds.Geo)
			})
			if err != nil {
				return err
			}
		}
		if runLegend != "" {
			err := writeArtifact(runLegend, func(w io.Writer) error {
				return report.WriteLegend(w, batch)
			})
			if err != nil {
				return err
			}
		}

		zap.L().Info("run complete",
			zap.String("run_id", batch.RunID),
			zap.Int("queries", len(batch.Results)),
			zap.Int("fips_mapped", len(batch.ByFIPS)),
		)

		return writeByFIPS(batch)
	},
}

// writeArtifact writes one optional output file.
func writeArtifact(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "run: create %s", path)
	}
	defer f.Close() //nolint:errcheck
	return write(f)
}

// writeByFIPS writes the merged fips mapping to --out or stdout.
func writeByFIPS(batch *engine.BatchResult) error {
	var w *os.File
	if runOut != "" {
		f, err := os.Create(runOut)
		if err != nil {
			return eris.Wrap(err, "run: create output file")
		}
		defer f.Close() //nolint:errcheck
		w = f
	} else {
		w = os.Stdout
	}
	return report.WriteJSON(w, batch)
}

func init() {
	runCmd.Flags().StringVar(&runStats, "stats", "", "statistics CSV path (default from config)")
	runCmd.Flags().StringVar(&runGeocodes, "geocodes", "", "geocode CSV path (default from config)")
	runCmd.Flags().StringVar(&runRequests, "requests", "", "request list CSV path (required)")
	runCmd.Flags().StringVar(&runStatistic, "statistic", "", "statistic column to aggregate (required)")
	runCmd.Flags().StringVar(&runDate, "date", "", "target date yyyy-mm-dd (default: latest per county)")
	runCmd.Flags().StringVar(&runOut, "out", "", "write the fips-keyed JSON here instead of stdout")
	runCmd.Flags().StringVar(&runGeoJSON, "geojson", "", "also write a GeoJSON FeatureCollection to this path")
	runCmd.Flags().StringVar(&runLegend, "legend", "", "also write a YAML legend to this path")
	_ = runCmd.MarkFlagRequired("requests")
	_ = runCmd.MarkFlagRequired("statistic")
	rootCmd.AddCommand(runCmd)
}
