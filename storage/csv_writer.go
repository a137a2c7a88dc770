package storage

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVWriter writes one derived table as comma-separated text.
type CSVWriter struct {
	writer *csv.Writer
}

// NewCSVWriter wraps w. Nothing is written until WriteTable.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// WriteTable writes the header row followed by rows.
func (c *CSVWriter) WriteTable(header []string, rows [][]string) error {
	if err := c.writer.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes any buffered output.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.writer.Error()
}
