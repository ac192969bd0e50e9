package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"slibuy-scraper/models"
)

var csvHeader = []string{
	"id", "title", "price", "price_value", "msrp", "time_left", "ends_at", "status", "link", "image_url", "scraped_at",
}

// CSVWriter writes listings as CSV with a header row, or as the
// headerless tab-separated won report (price, date, title).
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
	won    bool
	loc    *time.Location
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	c := &CSVWriter{closer: f, writer: csv.NewWriter(f), loc: time.Local}
	if err := c.writer.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	c.writer.Flush()
	return c, nil
}

// NewWonReportWriter writes the won report to w. A nil closer leaves w open
// on Close.
func NewWonReportWriter(w io.Writer, closer io.Closer) *CSVWriter {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return &CSVWriter{closer: closer, writer: cw, won: true, loc: time.Local}
}

// CreateWonReport opens path for a won report.
func CreateWonReport(path string) (*CSVWriter, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	return NewWonReportWriter(f, f), nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return f, nil
}

// WithLocation sets the zone dates are printed in.
func (c *CSVWriter) WithLocation(loc *time.Location) *CSVWriter {
	c.loc = loc
	return c
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := c.exportRow(l)
		if c.won {
			row = c.wonRow(l)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVWriter) exportRow(l *models.Listing) []string {
	endsAt := ""
	if l.EndsAt != nil {
		endsAt = time.UnixMilli(*l.EndsAt).In(c.loc).Format(time.RFC3339)
	}
	return []string{
		l.ID,
		l.Title,
		l.Price,
		optFloat(l.PriceValue),
		optFloat(l.MSRP),
		l.TimeLeft,
		endsAt,
		l.Status.String(),
		l.Link,
		l.ImageURL,
		time.UnixMilli(l.ScrapedAt).In(c.loc).Format(time.RFC3339),
	}
}

// wonRow prints price without the currency sign and the end date as M/D.
func (c *CSVWriter) wonRow(l *models.Listing) []string {
	price := strings.TrimSpace(strings.TrimPrefix(l.Price, "US"))
	price = strings.TrimSpace(strings.TrimPrefix(price, "$"))
	if price == "" {
		price = "?"
	}
	date := "?"
	if l.EndsAt != nil {
		t := time.UnixMilli(*l.EndsAt).In(c.loc)
		date = fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
	}
	return []string{price, date, l.Title}
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}
