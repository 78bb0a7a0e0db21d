package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// preferredSheet is read when present; otherwise the first sheet is used.
const preferredSheet = "All"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a comma-separated start list into a grid. Rows may be ragged.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return grid, nil
}

// ReadXLSX reads the preferred sheet of a workbook into a grid.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook: %w", ErrNoHeaderRow)
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if s == preferredSheet {
			sheet = s
			break
		}
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return grid, nil
}
