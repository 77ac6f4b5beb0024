package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"carhire-scraper/services"
)

var extractFlags struct {
	pageURL  string
	location string
	pickup   string
	days     int
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.pageURL, "url", "", "URL the page was saved from, for resolving photo links.")
	f.StringVar(&extractFlags.location, "location", "saved page", "Location label for the listings.")
	f.StringVar(&extractFlags.pickup, "pickup", "", `Pickup the page was searched for (see search --pickup).`)
	f.IntVar(&extractFlags.days, "days", 3, "Rental length the page was searched for.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <results.html>",
	Short: "Re-runs extraction and classification on a saved results page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		pickup, err := parsePickup(extractFlags.pickup, time.Now())
		if err != nil {
			return err
		}
		req := buildRequest(loadCatalog(), extractFlags.location, pickup, extractFlags.days, cfg.Language, cfg.Currency)

		extractor := services.NewExtractor(logger, cfg.PriceMin, cfg.PriceMax, cfg.Currency)
		cleaner := services.NewCleaner(logger, services.NewClassifier(nil), cfg.PriceMin, cfg.PriceMax)

		raw := extractor.ExtractWithBase(string(markup), extractFlags.pageURL)
		listings := cleaner.Clean(raw, req, time.Now())

		t := newTable()
		t.AppendHeader(table.Row{"#", "Vehicle", "Supplier", "Price", "Category", "Group", "Transmission"})
		for _, l := range listings {
			t.AppendRow(table.Row{l.Position, l.Name, l.Supplier, l.PriceText + " " + l.Currency, l.Category, l.Group, l.Transmission})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d blocks", len(raw)), "", fmt.Sprintf("%d kept", len(listings))})
		t.Render()

		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(listings))
		return nil
	},
}
