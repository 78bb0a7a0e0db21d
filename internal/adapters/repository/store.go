// Package repository persists operator-recorded actual end times.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/pkg/metrics"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Entry is one persisted actual end time.
type Entry struct {
	Key       model.HeatKey
	End       clock.TimeOfDay
	UpdatedAt time.Time
}

// Store provides read/write access to persisted actual end times.
//
// Writes are last-write-wins per heat by the change timestamp: a Save or
// Remove older than what is already recorded for that heat is ignored, so
// changes applied out of order converge on the newest one.
type Store interface {
	// Save records end as the actual end of key.
	Save(ctx context.Context, key model.HeatKey, end clock.TimeOfDay, at time.Time) error
	// Remove clears the actual end of key.
	Remove(ctx context.Context, key model.HeatKey, at time.Time) error
	// Load returns the actual end of key, or ErrNotFound.
	Load(ctx context.Context, key model.HeatKey) (Entry, error)
	// LoadAll returns every recorded actual end ordered by key.
	LoadAll(ctx context.Context) ([]Entry, error)
	// Clear removes every actual end and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	// Count returns the number of recorded actual ends.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open returns a store for driver. dsn is ignored by the memory driver.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemoryStore(ctx, opts...), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Apply writes one persistence message to s.
func Apply(ctx context.Context, s Store, change model.ActualEndChange) error {
	start := time.Now()
	var err error
	switch {
	case change.All:
		_, err = s.Clear(ctx)
	case change.Cleared():
		err = s.Remove(ctx, change.Key, change.At)
	default:
		err = s.Save(ctx, change.Key, change.EndAt(), change.At)
	}
	metrics.RecordStoreWriteLatency(metrics.Since(start))
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("apply change %s for %s: %w", change.ID, change.Key, err)
	}
	return nil
}

// Overrides converts entries into the scheduler's override map.
func Overrides(entries []Entry) map[model.HeatKey]clock.TimeOfDay {
	out := make(map[model.HeatKey]clock.TimeOfDay, len(entries))
	for _, e := range entries {
		out[e.Key] = e.End
	}
	return out
}

// metricsUpdater refreshes the store size gauge until ctx ends or stop closes.
func metricsUpdater(ctx context.Context, wg *sync.WaitGroup, stop <-chan struct{}, interval time.Duration, s Store) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				if n, err := s.Count(ctx); err == nil {
					metrics.UpdateStoreRecords(n)
				}
			}
		}
	}()
}
