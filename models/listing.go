package models

import "time"

// Transmission labels as surfaced to persistence.
const (
	TransmissionAutomatic = "Automatic"
	TransmissionManual    = "Manual"
)

// RawListing holds one vehicle block as extracted from the results markup.
// Name, PriceText and Price are always set; the remaining fields are
// optional and left empty when the block does not carry them.
type RawListing struct {
	Name         string
	SupplierCode string
	SupplierName string
	PriceText    string
	Price        float64
	Currency     string
	PhotoURL     string
	Transmission string

	// Position is the block's index in document order.
	Position int
}

// ClassifiedListing is the record handed to persistence.
type ClassifiedListing struct {
	Name         string
	SupplierCode string
	Supplier     string
	Price        float64
	PriceText    string
	Currency     string
	Category     string
	Group        GroupCode
	Transmission string
	PhotoURL     string
	Position     int

	Location  string
	Pickup    time.Time
	Dropoff   time.Time
	ScrapedAt time.Time
}

// GroupCode is the internal rental-class identifier used for pricing.
type GroupCode string

const (
	GroupB1           GroupCode = "B1"
	GroupB2           GroupCode = "B2"
	GroupD            GroupCode = "D"
	GroupE1           GroupCode = "E1"
	GroupE2           GroupCode = "E2"
	GroupF            GroupCode = "F"
	GroupG            GroupCode = "G"
	GroupJ1           GroupCode = "J1"
	GroupJ2           GroupCode = "J2"
	GroupL1           GroupCode = "L1"
	GroupL2           GroupCode = "L2"
	GroupM1           GroupCode = "M1"
	GroupM2           GroupCode = "M2"
	GroupN            GroupCode = "N"
	GroupUnclassified GroupCode = "Unclassified"
)

// AllGroups lists the fixed enumeration in reporting order.
var AllGroups = []GroupCode{
	GroupB1, GroupB2, GroupD, GroupE1, GroupE2, GroupF, GroupG,
	GroupJ1, GroupJ2, GroupL1, GroupL2, GroupM1, GroupM2, GroupN,
	GroupUnclassified,
}

// Valid reports whether g belongs to the fixed enumeration.
func (g GroupCode) Valid() bool {
	for _, known := range AllGroups {
		if g == known {
			return true
		}
	}
	return false
}

// GroupSummary is the per-group slice of an outcome summary.
type GroupSummary struct {
	Group        GroupCode
	Count        int
	MinPrice     float64
	AveragePrice float64
	Cheapest     *ClassifiedListing
}

// PriceSummary holds the per-group price view over one acquisition.
type PriceSummary struct {
	TotalListings int
	Suppliers     int
	Groups        []GroupSummary
	BySupplier    map[string]int
}
