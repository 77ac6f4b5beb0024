package storage

import (
	"context"

	"carhire-scraper/models"
)

// ListingWriter is the interface any storage backend must satisfy. Each
// Write call is one acquisition run.
type ListingWriter interface {
	Write(ctx context.Context, listings []*models.ClassifiedListing) error
	Close() error
}

// ListingReader returns the most recent run stored for a location.
type ListingReader interface {
	Latest(ctx context.Context, location string) ([]*models.ClassifiedListing, error)
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(req models.AcquisitionRequest, listings []*models.RawListing) error
	Close() error
}
