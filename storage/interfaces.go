package storage

import (
	"context"

	"rental-dashboard/models"
)

// ListingReader is the interface any dataset source must satisfy.
type ListingReader interface {
	Read(ctx context.Context) ([]*models.RawListing, error)
	Close() error
}

// TableWriter is the interface for exporting one derived table.
type TableWriter interface {
	WriteTable(header []string, rows [][]string) error
	Close() error
}
