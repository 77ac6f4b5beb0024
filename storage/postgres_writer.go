package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"carhire-scraper/utils"
)

var postgresDialect = dialect{
	name: "postgres",
	schema: `
		CREATE TABLE IF NOT EXISTS listings (
			id            SERIAL PRIMARY KEY,
			run_id        UUID          NOT NULL,
			location      TEXT          NOT NULL,
			pickup        TIMESTAMPTZ   NOT NULL,
			dropoff       TIMESTAMPTZ   NOT NULL,
			position      INTEGER       NOT NULL,
			name          TEXT          NOT NULL,
			supplier_code VARCHAR(8)    NOT NULL DEFAULT '',
			supplier      TEXT          NOT NULL DEFAULT '',
			price         NUMERIC(10,2) NOT NULL,
			price_text    VARCHAR(16)   NOT NULL,
			currency      CHAR(3)       NOT NULL,
			category      TEXT          NOT NULL,
			group_code    VARCHAR(16)   NOT NULL,
			transmission  VARCHAR(16)   NOT NULL DEFAULT '',
			photo_url     TEXT          NOT NULL DEFAULT '',
			scraped_at    TIMESTAMPTZ   NOT NULL,
			UNIQUE (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location);
		CREATE INDEX IF NOT EXISTS idx_listings_group    ON listings(group_code);
		CREATE INDEX IF NOT EXISTS idx_listings_pickup   ON listings(pickup);
	`,
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use writer.
func NewPostgresWriter(ctx context.Context, dsn string) (*SQLWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if sleepErr := utils.SleepContext(ctx, 2*time.Second); sleepErr != nil {
			break
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return newSQLWriter(ctx, db, postgresDialect)
}
