package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/georadius/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "georadius",
	Short: "County-radius statistic aggregation",
	Long:  "Joins a city geocode dataset with a county statistics dataset, resolves the counties within a radius of a target county, and reports raw totals and per-100k densities keyed by fips.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
