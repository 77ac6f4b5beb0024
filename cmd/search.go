package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"carhire-scraper/config"
	"carhire-scraper/models"
	"carhire-scraper/scraper/carjet"
	"carhire-scraper/services"
	"carhire-scraper/storage"
)

var searchFlags struct {
	pickup   string
	days     int
	language string
	currency string
	strategy string
	store    bool
	raw      bool
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.pickup, "pickup", "", `Pickup as "2006-01-02 15:04" or a lead like "+7d" (default +7d at 10:00).`)
	f.IntVar(&searchFlags.days, "days", 3, "Rental length in days.")
	f.StringVar(&searchFlags.language, "lang", "", "Display language of the marketplace (default CARJET_LANGUAGE).")
	f.StringVar(&searchFlags.currency, "currency", "", "Currency code (default CARJET_CURRENCY).")
	f.StringVar(&searchFlags.strategy, "strategy", "", "Primary strategy: browser or direct (default PRIMARY_STRATEGY).")
	f.BoolVar(&searchFlags.store, "store", false, "Persist listings to the configured storage backend.")
	f.BoolVar(&searchFlags.raw, "raw", false, "Dump raw blocks to CSV_OUTPUT_PATH.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <location-key|free text>",
	Short: "Runs one acquisition and prints the per-group price summary.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := firstNonEmpty(searchFlags.language, cfg.Language)
		currency := firstNonEmpty(searchFlags.currency, cfg.Currency)
		if searchFlags.strategy != "" {
			cfg.PrimaryStrategy = searchFlags.strategy
		}

		pickup, err := parsePickup(searchFlags.pickup, time.Now())
		if err != nil {
			return err
		}
		req := buildRequest(loadCatalog(), args[0], pickup, searchFlags.days, lang, currency)

		out := carjet.New(cfg, logger).Acquire(cmd.Context(), req)
		fmt.Println(out.Line())

		if searchFlags.raw && len(out.Raw) > 0 {
			rawWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
			if err != nil {
				return err
			}
			defer rawWriter.Close()
			if err := rawWriter.WriteRaw(req, out.Raw); err != nil {
				return err
			}
			logger.Info("[cli] Raw blocks saved to %s", cfg.CSVOutputPath)
		}

		if out.Status != models.StatusSuccess {
			if out.Status == models.StatusFailure {
				return out.Err
			}
			return nil
		}

		if searchFlags.store {
			writer, err := storage.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer writer.Close()
			if err := writer.Write(cmd.Context(), out.Listings); err != nil {
				return err
			}
			logger.Info("[cli] Stored %d listings (%s)", len(out.Listings), cfg.StorageBackend)
		}

		insights := services.NewInsightService(logger)
		insights.Print(os.Stdout, insights.Generate(out.Listings))
		return nil
	},
}

// buildRequest resolves key through the catalog, falling back to treating
// it as free text.
func buildRequest(catalog config.Catalog, key string, pickup time.Time, days int, lang, currency string) models.AcquisitionRequest {
	req := models.AcquisitionRequest{
		Location: strings.TrimSpace(key),
		Pickup:   pickup,
		Dropoff:  pickup.AddDate(0, 0, days),
		Language: lang,
		Currency: strings.ToUpper(currency),
	}
	if loc, ok := catalog.Lookup(key); ok {
		req.Location = firstNonEmpty(loc.Query, req.Location)
		req.SiteNames = loc.Sites
	}
	return req
}

// parsePickup accepts an absolute "2006-01-02 15:04", a date alone (10:00)
// or a lead "+Nd" relative to now (10:00 on that day).
func parsePickup(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "+7d"
	}
	if strings.HasPrefix(value, "+") && strings.HasSuffix(value, "d") {
		var n int
		if _, err := fmt.Sscanf(value, "+%dd", &n); err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("pickup %q: want +<days>d", value)
		}
		return time.Date(now.Year(), now.Month(), now.Day()+n, 10, 0, 0, 0, now.Location()), nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			if layout == "2006-01-02" {
				t = t.Add(10 * time.Hour)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("pickup %q: want \"2006-01-02 15:04\" or +<days>d", value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
