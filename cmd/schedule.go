package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"carhire-scraper/scheduler"
	"carhire-scraper/scraper/carjet"
	"carhire-scraper/storage"
)

var scheduleFlags struct {
	locations []string
	lead      []int
	days      []int
	hour      int
	spec      string
	once      bool
	raw       bool
}

func init() {
	f := scheduleCmd.Flags()
	f.StringSliceVar(&scheduleFlags.locations, "locations", nil, "Catalog keys to search (default: every catalog entry).")
	f.IntSliceVar(&scheduleFlags.lead, "lead", []int{7, 14, 30}, "Days between the run and pickup.")
	f.IntSliceVar(&scheduleFlags.days, "days", []int{3, 7}, "Rental lengths in days.")
	f.IntVar(&scheduleFlags.hour, "hour", 10, "Pickup and dropoff hour.")
	f.StringVar(&scheduleFlags.spec, "spec", "", "Cron spec (default SCHEDULE_SPEC).")
	f.BoolVar(&scheduleFlags.once, "once", false, "Run the job table once and exit.")
	f.BoolVar(&scheduleFlags.raw, "raw", false, "Dump raw blocks to CSV_OUTPUT_PATH.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Runs the acquisition job table on a cron schedule and stores the results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := loadCatalog()
		locations := scheduleFlags.locations
		if len(locations) == 0 {
			locations = catalog.Keys()
		}
		if len(locations) == 0 {
			return fmt.Errorf("no locations: pass --locations or provide %s", cfg.LocationsFile)
		}

		writer, err := storage.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer writer.Close()

		opts := scheduler.Options{
			Clock:          scheduler.SystemClock(nil),
			Logger:         logger,
			Catalog:        catalog,
			Jobs:           scheduler.JobsFor(locations, scheduleFlags.lead, scheduleFlags.days, scheduleFlags.hour, cfg.Language, cfg.Currency),
			Acquirer:       carjet.New(cfg, logger),
			Writer:         writer,
			MaxConcurrency: cfg.MaxConcurrency,
			RateLimitMs:    cfg.RateLimitMs,
		}
		if scheduleFlags.raw {
			rawWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
			if err != nil {
				return err
			}
			defer rawWriter.Close()
			opts.Raw = rawWriter
		}

		s, err := scheduler.New(opts)
		if err != nil {
			return err
		}

		if !scheduleFlags.once {
			return s.Start(cmd.Context(), firstNonEmpty(scheduleFlags.spec, cfg.ScheduleSpec))
		}

		outcomes := s.RunOnce(cmd.Context())
		t := newTable()
		t.AppendHeader(table.Row{"Location", "Pickup", "Days", "Status", "Listings", "Strategy"})
		for _, out := range outcomes {
			if out == nil {
				continue
			}
			t.AppendRow(table.Row{
				out.Request.Location, out.Request.Pickup.Format("2006-01-02 15:04"), out.Request.Days(),
				strings.ReplaceAll(string(out.Status), "_", " "), len(out.Listings), out.Strategy,
			})
		}
		t.Render()
		return nil
	},
}
