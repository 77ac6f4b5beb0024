package services

import (
	"strings"
	"time"

	"carhire-scraper/models"
	"carhire-scraper/utils"
)

// Cleaner validates raw listings and turns them into classified records.
type Cleaner struct {
	logger     *utils.Logger
	classifier *Classifier

	PriceMin float64
	PriceMax float64
}

// NewCleaner creates a Cleaner with the given logger and classifier.
func NewCleaner(logger *utils.Logger, classifier *Classifier, priceMin, priceMax float64) *Cleaner {
	return &Cleaner{
		logger:     logger,
		classifier: classifier,
		PriceMin:   priceMin,
		PriceMax:   priceMax,
	}
}

// Clean processes raw listings for req and returns classified records in
// the same order. Listings without a name or with an implausible price are
// dropped before classification.
func (c *Cleaner) Clean(raw []*models.RawListing, req models.AcquisitionRequest, scrapedAt time.Time) []*models.ClassifiedListing {
	result := make([]*models.ClassifiedListing, 0, len(raw))

	for _, r := range raw {
		name := collapseSpace(r.Name)
		if name == "" {
			c.logger.Warn("[cleaner] Dropping listing without a name at position %d", r.Position)
			continue
		}
		if r.Price <= 0 || r.Price < c.PriceMin || r.Price > c.PriceMax {
			c.logger.Warn("[cleaner] Dropping %s: implausible price %q", name, r.PriceText)
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(r.Currency))
		if currency == "" {
			currency = req.Currency
		}

		category, group := c.classifier.Classify(name, r.Transmission)
		if group == models.GroupUnclassified {
			c.logger.Debug("[cleaner] No group for %q", name)
		}

		result = append(result, &models.ClassifiedListing{
			Name:         name,
			SupplierCode: strings.ToUpper(strings.TrimSpace(r.SupplierCode)),
			Supplier:     normaliseSupplier(r),
			Price:        r.Price,
			PriceText:    FormatPrice(r.Price),
			Currency:     currency,
			Category:     category,
			Group:        group,
			Transmission: normaliseTransmission(r.Transmission, category),
			PhotoURL:     strings.TrimSpace(r.PhotoURL),
			Position:     r.Position,
			Location:     req.Location,
			Pickup:       req.Pickup,
			Dropoff:      req.Dropoff,
			ScrapedAt:    scrapedAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// normaliseSupplier prefers the supplier table, then the name found on the
// page, then the bare code.
func normaliseSupplier(r *models.RawListing) string {
	if name, ok := SupplierName(r.SupplierCode); ok {
		return name
	}
	if name := collapseSpace(r.SupplierName); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(r.SupplierCode))
}

// normaliseTransmission fills in "Automatic" for automatic categories when
// the block carried no marker.
func normaliseTransmission(raw, category string) string {
	switch {
	case raw != "":
		return raw
	case strings.HasSuffix(category, " Auto"):
		return models.TransmissionAutomatic
	}
	return ""
}
