package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"rental-dashboard/models"
	"rental-dashboard/utils"
)

// PostgresWriter seeds the listings table from raw rows so the dashboard can
// run with DATA_SOURCE=postgres. Values are stored as text, exactly as read;
// cleaning happens on load like for the CSV source.
type PostgresWriter struct {
	db    *sql.DB
	table string
}

// NewPostgresWriter opens a connection to PostgreSQL, pings it with retries
// and creates the table if it does not exist.
func NewPostgresWriter(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db, table: table}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, createTableQuery(pw.table))
	return err
}

// Write replaces the table contents with listings in one transaction.
func (pw *PostgresWriter) Write(ctx context.Context, listings []*models.RawListing) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "TRUNCATE "+quoteTable(pw.table)); err != nil {
		return fmt.Errorf("postgres: clear %s: %w", pw.table, err)
	}

	const batchSize = 200
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		query, args := insertBatchQuery(pw.table, listings[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func createTableQuery(table string) string {
	defs := make([]string, len(listingColumns))
	for i, c := range listingColumns {
		defs[i] = pq.QuoteIdentifier(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteTable(table), strings.Join(defs, ", "))
}

func insertBatchQuery(table string, batch []*models.RawListing) (string, []interface{}) {
	n := len(listingColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*n)

	for idx, l := range batch {
		placeholders := make([]string, n)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", idx*n+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.Province, l.City, l.Type, l.Beds, l.Baths, l.Price,
			l.SqFeet, l.LeaseTerm, l.Furnishing, l.Latitude, l.Longitude)
	}

	cols := make([]string, n)
	for i, c := range listingColumns {
		cols[i] = pq.QuoteIdentifier(c)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteTable(table), strings.Join(cols, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}
