// Package cmd holds the carhire command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"carhire-scraper/config"
	"carhire-scraper/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carhire",
	Short: "carhire acquires and classifies car-rental prices from the marketplace.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = utils.NewLoggerTo(os.Stderr, utils.ParseLevel(cfg.LogLevel))
	},
	SilenceUsage: true,
}

// ExecuteContext runs the command line and exits non-zero on error.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func loadCatalog() config.Catalog {
	catalog, err := config.LoadCatalog(cfg.LocationsFile)
	if err != nil {
		logger.Warn("[cli] No location catalog at %s: %v", cfg.LocationsFile, err)
	}
	return catalog
}
