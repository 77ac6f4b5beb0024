package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"carhire-scraper/models"
)

var (
	rawHeader = []string{
		"location", "pickup", "dropoff", "position", "name", "supplier_code", "supplier_name",
		"price_text", "price", "currency", "transmission", "photo_url", "dumped_at",
	}
	listingHeader = []string{
		"location", "pickup", "dropoff", "position", "name", "supplier_code", "supplier",
		"price", "currency", "category", "group", "transmission", "photo_url", "scraped_at",
	}
)

// csvFile appends rows to a CSV file under a mutex so parallel sessions can
// share it.
type csvFile struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// openCSV creates (or truncates) the CSV file at path and writes header.
// Intermediate directories are created automatically.
func openCSV(path string, header []string) (*csvFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &csvFile{file: f, writer: w}, nil
}

func (c *csvFile) writeRows(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *csvFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

// CSVWriter dumps raw (unclassified) listings so selector drift on the
// results page can be inspected. It is safe for concurrent use.
type CSVWriter struct {
	*csvFile
	now func() time.Time
}

// NewCSVWriter creates the raw dump at path.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := openCSV(path, rawHeader)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{csvFile: f, now: time.Now}, nil
}

// WriteRaw appends the raw listings of one acquisition.
func (c *CSVWriter) WriteRaw(req models.AcquisitionRequest, listings []*models.RawListing) error {
	dumped := c.now().Format(time.RFC3339)
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			req.Location,
			req.Pickup.Format(time.RFC3339),
			req.Dropoff.Format(time.RFC3339),
			strconv.Itoa(l.Position),
			l.Name,
			l.SupplierCode,
			l.SupplierName,
			l.PriceText,
			strconv.FormatFloat(l.Price, 'f', 2, 64),
			l.Currency,
			l.Transmission,
			l.PhotoURL,
			dumped,
		})
	}
	return c.writeRows(rows)
}

// CSVListingWriter is the csv storage backend for classified listings.
type CSVListingWriter struct {
	*csvFile
}

// NewCSVListingWriter creates the listings file at path.
func NewCSVListingWriter(path string) (*CSVListingWriter, error) {
	f, err := openCSV(path, listingHeader)
	if err != nil {
		return nil, err
	}
	return &CSVListingWriter{csvFile: f}, nil
}

func (c *CSVListingWriter) Write(_ context.Context, listings []*models.ClassifiedListing) error {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.Location,
			l.Pickup.Format(time.RFC3339),
			l.Dropoff.Format(time.RFC3339),
			strconv.Itoa(l.Position),
			l.Name,
			l.SupplierCode,
			l.Supplier,
			l.PriceText,
			l.Currency,
			l.Category,
			string(l.Group),
			l.Transmission,
			l.PhotoURL,
			l.ScrapedAt.Format(time.RFC3339),
		})
	}
	return c.writeRows(rows)
}
