package services

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"carhire-scraper/models"
	"carhire-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds the per-group price view over one acquisition. Groups
// are reported in the fixed enumeration order and only when they have
// listings.
func (s *InsightService) Generate(listings []*models.ClassifiedListing) *models.PriceSummary {
	report := &models.PriceSummary{
		BySupplier: make(map[string]int),
	}
	if len(listings) == 0 {
		return report
	}
	report.TotalListings = len(listings)

	byGroup := make(map[models.GroupCode][]*models.ClassifiedListing)
	for _, l := range listings {
		byGroup[l.Group] = append(byGroup[l.Group], l)
		if l.Supplier != "" {
			report.BySupplier[l.Supplier]++
		}
	}
	report.Suppliers = len(report.BySupplier)

	for _, g := range models.AllGroups {
		group := byGroup[g]
		if len(group) == 0 {
			continue
		}
		summary := models.GroupSummary{Group: g, Count: len(group), Cheapest: group[0]}
		var total float64
		for _, l := range group {
			total += l.Price
			// Ties keep the earlier listing.
			if l.Price < summary.Cheapest.Price {
				summary.Cheapest = l
			}
		}
		summary.MinPrice = round2(summary.Cheapest.Price)
		summary.AveragePrice = round2(total / float64(len(group)))
		report.Groups = append(report.Groups, summary)
	}

	s.logger.Debug("[insights] %d listings across %d groups", report.TotalListings, len(report.Groups))
	return report
}

// Print renders the summary as tables on w.
func (s *InsightService) Print(w io.Writer, r *models.PriceSummary) {
	fmt.Fprintf(w, "\n%s\n", text.Colors{text.Bold, text.FgMagenta}.Sprint("PRICE SUMMARY BY GROUP"))
	fmt.Fprintf(w, "Total listings: %d   Suppliers: %d\n\n", r.TotalListings, r.Suppliers)

	if len(r.Groups) == 0 {
		fmt.Fprintln(w, "No listings")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Group", "Count", "Min", "Average", "Cheapest", "Supplier"})
	for _, g := range r.Groups {
		t.AppendRow(table.Row{
			g.Group, g.Count,
			fmt.Sprintf("%.2f", g.MinPrice),
			fmt.Sprintf("%.2f", g.AveragePrice),
			truncate(g.Cheapest.Name, 32),
			truncate(g.Cheapest.Supplier, 24),
		})
	}
	t.Render()

	type supplierCount struct {
		name  string
		count int
	}
	var suppliers []supplierCount
	for name, cnt := range r.BySupplier {
		suppliers = append(suppliers, supplierCount{name, cnt})
	}
	sort.Slice(suppliers, func(i, j int) bool {
		if suppliers[i].count != suppliers[j].count {
			return suppliers[i].count > suppliers[j].count
		}
		return suppliers[i].name < suppliers[j].name
	})
	if len(suppliers) == 0 {
		return
	}

	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.SetStyle(table.StyleLight)
	st.AppendHeader(table.Row{"Supplier", "Listings"})
	for _, sc := range suppliers {
		st.AppendRow(table.Row{sc.name, sc.count})
	}
	st.Render()
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
