package services

import (
	"bytes"
	"strings"
	"testing"

	"carhire-scraper/models"
)

func sampleListings() []*models.ClassifiedListing {
	return []*models.ClassifiedListing{
		{Name: "Renault Clio", Supplier: "Auto Prudente", Price: 45, Group: models.GroupE1},
		{Name: "Peugeot 208", Supplier: "Goldcar", Price: 40, Group: models.GroupE1},
		{Name: "Opel Corsa", Supplier: "Goldcar", Price: 40, Group: models.GroupE1},
		{Name: "Toyota Aygo Auto", Supplier: "Sixt", Price: 61.5, Group: models.GroupB2},
		{Name: "Mini Cooper Cabrio", Supplier: "Sixt", Price: 210, Group: models.GroupD},
		{Name: "Mystery", Supplier: "", Price: 99, Group: models.GroupUnclassified},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 6 {
		t.Errorf("TotalListings: got %d, want 6", r.TotalListings)
	}
	if r.Suppliers != 3 {
		t.Errorf("Suppliers: got %d, want 3", r.Suppliers)
	}
	if r.BySupplier["Goldcar"] != 2 {
		t.Errorf("Goldcar count: got %d, want 2", r.BySupplier["Goldcar"])
	}
}

func TestInsightGroupOrderAndPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleListings())

	var order []models.GroupCode
	for _, g := range r.Groups {
		order = append(order, g.Group)
	}
	want := []models.GroupCode{models.GroupB2, models.GroupD, models.GroupE1, models.GroupUnclassified}
	if len(order) != len(want) {
		t.Fatalf("groups: got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("groups: got %v, want %v", order, want)
		}
	}

	economy := r.Groups[2]
	if economy.Count != 3 {
		t.Errorf("E1 count: got %d, want 3", economy.Count)
	}
	if economy.MinPrice != 40 {
		t.Errorf("E1 min: got %.2f, want 40", economy.MinPrice)
	}
	if economy.AveragePrice != 41.67 {
		t.Errorf("E1 average: got %.2f, want 41.67", economy.AveragePrice)
	}
	if economy.Cheapest.Name != "Peugeot 208" {
		t.Errorf("E1 cheapest: got %q, want first of the tied listings", economy.Cheapest.Name)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleListings()))

	out := buf.String()
	for _, want := range []string{"PRICE SUMMARY BY GROUP", "E1", "Peugeot 208", "Goldcar"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 || len(r.Groups) != 0 {
		t.Errorf("expected empty summary for empty input")
	}
}
