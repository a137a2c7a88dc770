package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"rental-dashboard/models"
)

// CSVReader loads the listings dataset from a comma-separated file.
type CSVReader struct {
	path string
}

// NewCSVReader returns a reader for the CSV file at path. The file is not
// opened until Read.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// Read opens and parses the whole file. A missing file yields *NotFoundError.
func (c *CSVReader) Read(ctx context.Context) ([]*models.RawListing, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Source: c.path, Err: err}
		}
		return nil, fmt.Errorf("csv: open %q: %w", c.path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseCSV(f)
}

// Close is a no-op; the file is closed at the end of Read.
func (c *CSVReader) Close() error { return nil }

// utf8BOM prefixes headers written by spreadsheet exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a listings CSV from r. Every column is kept as text; typing
// is the cleaner's job. A file holding only a valid header yields no rows.
func ParseCSV(r io.Reader) ([]*models.RawListing, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csv: read: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	// the header is read as a data row so a header-only file still loads
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("csv: parse: %w", df.Err)
	}

	records := df.Records()
	if len(records) < 2 {
		return nil, fmt.Errorf("csv: parse: no header row")
	}
	header, body := records[1], records[2:]

	if err := missingColumns(header, models.RequiredColumns); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, n := range header {
		index[strings.ToLower(strings.TrimSpace(n))] = i
	}

	raw := make([]*models.RawListing, 0, len(body))
	for _, row := range body {
		at := func(key string) string {
			i, ok := index[key]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		raw = append(raw, &models.RawListing{
			Province:   at(models.ColProvince),
			City:       at(models.ColCity),
			Type:       at(models.ColType),
			Beds:       at(models.ColBeds),
			Baths:      at(models.ColBaths),
			Price:      at(models.ColPrice),
			SqFeet:     at(models.ColSqFeet),
			LeaseTerm:  at(models.ColLeaseTerm),
			Furnishing: at(models.ColFurnishing),
			Latitude:   at(models.ColLatitude),
			Longitude:  at(models.ColLongitude),
		})
	}
	return raw, nil
}
