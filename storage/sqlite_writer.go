package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
		CREATE TABLE IF NOT EXISTS listings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT     NOT NULL,
			location      TEXT     NOT NULL,
			pickup        DATETIME NOT NULL,
			dropoff       DATETIME NOT NULL,
			position      INTEGER  NOT NULL,
			name          TEXT     NOT NULL,
			supplier_code TEXT     NOT NULL DEFAULT '',
			supplier      TEXT     NOT NULL DEFAULT '',
			price         REAL     NOT NULL,
			price_text    TEXT     NOT NULL,
			currency      TEXT     NOT NULL,
			category      TEXT     NOT NULL,
			group_code    TEXT     NOT NULL,
			transmission  TEXT     NOT NULL DEFAULT '',
			photo_url     TEXT     NOT NULL DEFAULT '',
			scraped_at    DATETIME NOT NULL,
			UNIQUE (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location);
		CREATE INDEX IF NOT EXISTS idx_listings_group    ON listings(group_code);
	`,
	placeholder: func(int) string { return "?" },
}

// NewSQLiteWriter opens (creating if needed) the database file at path.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// One writer at a time; parallel sessions queue on the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: configure: %w", err)
	}
	return newSQLWriter(ctx, db, sqliteDialect)
}
