package heatsheet

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/heatsheet/internal/adapters/ingest"
	"github.com/okian/heatsheet/internal/domain/estimate"
	"github.com/okian/heatsheet/internal/domain/schedule"
	"github.com/okian/heatsheet/pkg/logger"
)

// Run loads the roster, applies the actual ends and prints the projection
// to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	if cfg.Roster == "" {
		return ErrNoRoster
	}
	format := cfg.Format
	if format == "" {
		format = FormatTable
	}
	if format != FormatTable && format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}

	overrides, err := ParseActualEnds(cfg.ActualEnd, cfg.Schedule.Lunch)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.Roster)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = f.Close() }()

	batch, err := ingest.Load(ctx, cfg.Roster, f, cfg.Schedule.Days)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	heats := estimate.Resolve(batch.Heats, cfg.Fallback)

	logger.Get().Debug(ctx, "roster loaded",
		logger.String("source", batch.Source),
		logger.Int("records", batch.Records),
		logger.Int("heats", len(heats)),
		logger.Int("actualEnds", len(overrides)),
	)

	projected := schedule.Project(heats, overrides, cfg.Schedule, cfg.Filter)
	if format == FormatJSON {
		return WriteJSON(out, projected, time.Now())
	}
	return WriteTable(out, projected)
}
