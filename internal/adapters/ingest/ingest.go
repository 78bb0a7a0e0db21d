// Package ingest turns start-list spreadsheets into heat batches.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/heatsheet/internal/domain/days"
	"github.com/okian/heatsheet/internal/domain/model"
)

// Format is a supported roster file type.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf infers the format from a file name.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Load reads a roster named name from r and builds a new batch. Estimates
// are left unresolved.
func Load(ctx context.Context, name string, r io.Reader, table days.Table) (*model.Batch, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	var grid [][]string
	switch format {
	case FormatCSV:
		grid, err = ReadCSV(r)
	case FormatXLSX:
		grid, err = ReadXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := Records(grid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &model.Batch{
		ID:       uuid.New(),
		Source:   filepath.Base(name),
		LoadedAt: time.Now(),
		Records:  len(records),
		Heats:    BuildHeats(records, table),
	}, nil
}
