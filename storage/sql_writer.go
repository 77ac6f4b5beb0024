package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carhire-scraper/models"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name   string
	schema string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
}

const listingColumns = `run_id, location, pickup, dropoff, position, name, supplier_code, supplier,
	price, price_text, currency, category, group_code, transmission, photo_url, scraped_at`

const columnCount = 16

// SQLWriter persists classified listings to a SQL database. Every Write is
// one run, identified by a random run id, so history is kept across runs.
type SQLWriter struct {
	db       *sql.DB
	dialect  dialect
	newRunID func() string
}

func newSQLWriter(ctx context.Context, db *sql.DB, d dialect) (*SQLWriter, error) {
	w := &SQLWriter{db: db, dialect: d, newRunID: uuid.NewString}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.name, err)
	}
	return w, nil
}

// Write batch-inserts the listings of one run.
func (w *SQLWriter) Write(ctx context.Context, listings []*models.ClassifiedListing) error {
	if len(listings) == 0 {
		return nil
	}
	runID := w.newRunID()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", w.dialect.name, err)
	}
	defer tx.Rollback()

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := w.insertBatch(ctx, tx, runID, listings[i:end]); err != nil {
			return fmt.Errorf("%s: insert: %w", w.dialect.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", w.dialect.name, err)
	}
	return nil
}

func (w *SQLWriter) insertBatch(ctx context.Context, tx *sql.Tx, runID string, batch []*models.ClassifiedListing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*columnCount)

	for idx, l := range batch {
		base := idx * columnCount
		marks := make([]string, columnCount)
		for i := range marks {
			marks[i] = w.dialect.placeholder(base + i + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(marks, ",")+")")
		valueArgs = append(valueArgs,
			runID, l.Location, l.Pickup.UTC(), l.Dropoff.UTC(), l.Position, l.Name, l.SupplierCode, l.Supplier,
			l.Price, l.PriceText, l.Currency, l.Category, string(l.Group), l.Transmission, l.PhotoURL, l.ScrapedAt.UTC())
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (%s)
		VALUES %s
		ON CONFLICT (run_id, position) DO NOTHING
	`, listingColumns, strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// Latest retrieves the most recent run stored for location, in document
// order. A location never stored yields an empty slice.
func (w *SQLWriter) Latest(ctx context.Context, location string) ([]*models.ClassifiedListing, error) {
	var runID string
	err := w.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT run_id FROM listings WHERE location = %s ORDER BY id DESC LIMIT 1`, w.dialect.placeholder(1)),
		location).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return []*models.ClassifiedListing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: latest run: %w", w.dialect.name, err)
	}

	rows, err := w.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT location, pickup, dropoff, position, name, supplier_code, supplier,
			price, price_text, currency, category, group_code, transmission, photo_url, scraped_at
		FROM listings
		WHERE run_id = %s
		ORDER BY position
	`, w.dialect.placeholder(1)), runID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch run %s: %w", w.dialect.name, runID, err)
	}
	defer rows.Close()

	listings := []*models.ClassifiedListing{}
	for rows.Next() {
		l := &models.ClassifiedListing{}
		var group string
		if err := rows.Scan(
			&l.Location, &l.Pickup, &l.Dropoff, &l.Position, &l.Name, &l.SupplierCode, &l.Supplier,
			&l.Price, &l.PriceText, &l.Currency, &l.Category, &group, &l.Transmission, &l.PhotoURL, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", w.dialect.name, err)
		}
		l.Group = models.GroupCode(group)
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (w *SQLWriter) Close() error {
	return w.db.Close()
}
