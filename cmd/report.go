package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"carhire-scraper/services"
	"carhire-scraper/storage"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <location-key|free text>",
	Short: "Prints the price summary of the latest stored run for a location.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := storage.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer writer.Close()

		reader, ok := writer.(storage.ListingReader)
		if !ok {
			return fmt.Errorf("storage backend %q cannot be read back; use postgres or sqlite", cfg.StorageBackend)
		}

		location := args[0]
		if loc, found := loadCatalog().Lookup(location); found && loc.Query != "" {
			location = loc.Query
		}
		listings, err := reader.Latest(cmd.Context(), location)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			fmt.Printf("No stored runs for %q\n", location)
			return nil
		}

		fmt.Printf("%s, scraped %s, pickup %s\n", location,
			listings[0].ScrapedAt.Format("2006-01-02 15:04"), listings[0].Pickup.Format("2006-01-02 15:04"))
		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(listings))
		return nil
	},
}
