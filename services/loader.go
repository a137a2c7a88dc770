package services

import (
	"context"
	"fmt"

	"rental-dashboard/storage"
)

// LoadTable reads the whole dataset from reader, cleans it and freezes it
// into a Table. Errors are returned untouched in kind: a *storage.NotFoundError
// stays detectable with storage.IsNotFound so the caller can halt startup.
func LoadTable(ctx context.Context, reader storage.ListingReader, cleaner *Cleaner) (*Table, error) {
	raw, err := reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return NewTable(cleaner.Clean(raw)), nil
}
