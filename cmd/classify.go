package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"carhire-scraper/services"
)

var classifyTransmission string

func init() {
	classifyCmd.Flags().StringVar(&classifyTransmission, "transmission", "", "Transmission marker: Automatic, Manual or empty.")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <vehicle name>...",
	Short: "Shows how vehicle names map onto categories and rental groups.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		classifier := services.NewClassifier(nil)

		t := newTable()
		t.SetTitle(fmt.Sprintf("Vehicle table %s (%d entries)", classifier.Table().Version, classifier.Table().Len()))
		t.AppendHeader(table.Row{"Name", "Normalized", "Category", "Group", "Match", "Key"})
		for _, name := range args {
			c := classifier.Explain(name, classifyTransmission)
			t.AppendRow(table.Row{name, c.Normalized, c.Category, c.Group, c.Source, c.Key})
		}
		t.Render()
	},
}
