package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"rental-dashboard/models"
	"rental-dashboard/utils"
)

// undefinedTable is the SQLSTATE PostgreSQL reports for a missing relation.
const undefinedTable pq.ErrorCode = "42P01"

// PostgresReader loads the listings dataset from a PostgreSQL table. It only
// ever reads; the dashboard never writes listings back.
type PostgresReader struct {
	db    *sql.DB
	table string
}

// NewPostgresReader opens a connection to PostgreSQL and pings it, retrying
// with back-off until the server answers.
func NewPostgresReader(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresReader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &PostgresReader{db: db, table: table}, nil
}

// Read fetches every row of the table as text. A missing table yields
// *NotFoundError, the same fatal condition as a missing CSV file.
func (pr *PostgresReader) Read(ctx context.Context) ([]*models.RawListing, error) {
	rows, err := pr.db.QueryContext(ctx, selectListingsQuery(pr.table))
	if err != nil {
		return nil, mapPostgresError(pr.table, err)
	}
	defer rows.Close()

	var listings []*models.RawListing
	for rows.Next() {
		var f [11]sql.NullString
		if err := rows.Scan(&f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &f[6], &f[7], &f[8], &f[9], &f[10]); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, &models.RawListing{
			Province:   f[0].String,
			City:       f[1].String,
			Type:       f[2].String,
			Beds:       f[3].String,
			Baths:      f[4].String,
			Price:      f[5].String,
			SqFeet:     f[6].String,
			LeaseTerm:  f[7].String,
			Furnishing: f[8].String,
			Latitude:   f[9].String,
			Longitude:  f[10].String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return listings, nil
}

func (pr *PostgresReader) Close() error {
	return pr.db.Close()
}

// listingColumns is the column order of the listings table, shared by the
// reader's SELECT and the seeder's INSERT.
var listingColumns = []string{
	models.ColProvince, models.ColCity, models.ColType, models.ColBeds, models.ColBaths,
	models.ColPrice, models.ColSqFeet, models.ColLeaseTerm, models.ColFurnishing,
	models.ColLatitude, models.ColLongitude,
}

func selectListingsQuery(table string) string {
	selects := make([]string, len(listingColumns))
	for i, c := range listingColumns {
		selects[i] = pq.QuoteIdentifier(c) + "::text"
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quoteTable(table))
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func mapPostgresError(table string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return &NotFoundError{Source: "postgres table " + table, Err: err}
	}
	return fmt.Errorf("postgres: query %s: %w", table, err)
}
