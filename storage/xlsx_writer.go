package storage

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes one derived table into a single-sheet workbook.
// Cells that parse as numbers are stored as numbers.
type XLSXWriter struct {
	out   io.Writer
	sheet string
	file  *excelize.File
}

// NewXLSXWriter prepares a workbook whose only sheet is named sheet.
// The workbook is streamed to out by WriteTable.
func NewXLSXWriter(out io.Writer, sheet string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if sheet == "" {
		sheet = "Sheet1"
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: name sheet: %w", err)
	}
	return &XLSXWriter{out: out, sheet: sheet, file: f}, nil
}

// WriteTable fills the sheet and writes the workbook to the output.
func (x *XLSXWriter) WriteTable(header []string, rows [][]string) error {
	if err := x.writeRow(1, header, false); err != nil {
		return err
	}
	for i, row := range rows {
		if err := x.writeRow(i+2, row, true); err != nil {
			return err
		}
	}
	if err := x.file.SetPanes(x.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsx: freeze header: %w", err)
	}
	if _, err := x.file.WriteTo(x.out); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func (x *XLSXWriter) writeRow(rowNum int, values []string, numeric bool) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
		if numeric {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = f
			}
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := x.file.SetSheetRow(x.sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", rowNum, err)
	}
	return nil
}

// Close releases the workbook.
func (x *XLSXWriter) Close() error {
	return x.file.Close()
}
