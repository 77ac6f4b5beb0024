// Package storage persists classified listings and the raw dump.
package storage

import (
	"context"
	"fmt"
	"strings"

	"carhire-scraper/config"
)

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Open returns the ListingWriter selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (ListingWriter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case BackendCSV, "":
		return NewCSVListingWriter(cfg.ListingsCSVPath)
	case BackendPostgres:
		return NewPostgresWriter(ctx, cfg.DSN())
	case BackendSQLite:
		return NewSQLiteWriter(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
