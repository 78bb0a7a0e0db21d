package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
)

// A NULL end_hms marks a cleared heat; the row keeps its timestamp so older
// saves cannot resurrect it.
const schema = `
CREATE TABLE IF NOT EXISTS actual_end (
	event      INTEGER NOT NULL,
	heat       INTEGER NOT NULL,
	end_hms    TEXT,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (event, heat)
)`

const upsert = `
INSERT INTO actual_end (event, heat, end_hms, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (event, heat) DO UPDATE SET
	end_hms = excluded.end_hms,
	updated_at = excluded.updated_at
WHERE excluded.updated_at >= actual_end.updated_at`

// SQLiteStore keeps actual end times in a SQLite database file, so they
// survive restarts of the service.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSQLiteStore opens (creating when needed) the database at dsn.
func NewSQLiteStore(ctx context.Context, dsn string, opts ...Option) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite store: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", dsn, err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: create schema: %w", err)
	}

	o := buildOptions(opts)
	s := &SQLiteStore{db: db, stopChan: make(chan struct{})}
	metricsUpdater(ctx, &s.wg, s.stopChan, o.metricsUpdateInterval, s)
	return s, nil
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SQLiteStore) queryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

// Save records end as the actual end of key.
func (s *SQLiteStore) Save(ctx context.Context, key model.HeatKey, end clock.TimeOfDay, at time.Time) error {
	if _, err := s.exec(ctx, upsert, key.Event, key.Index, end.String(), at.UnixNano()); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Remove clears the actual end of key.
func (s *SQLiteStore) Remove(ctx context.Context, key model.HeatKey, at time.Time) error {
	if _, err := s.exec(ctx, upsert, key.Event, key.Index, nil, at.UnixNano()); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Load returns the actual end of key.
func (s *SQLiteStore) Load(ctx context.Context, key model.HeatKey) (Entry, error) {
	var (
		hms     string
		updated int64
	)
	row, err := s.queryRow(ctx,
		`SELECT end_hms, updated_at FROM actual_end WHERE event = ? AND heat = ? AND end_hms IS NOT NULL`,
		key.Event, key.Index)
	if err != nil {
		return Entry{}, err
	}
	err = row.Scan(&hms, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load %s: %w", key, err)
	}
	return entryOf(key, hms, updated)
}

// LoadAll returns every recorded actual end ordered by key.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]Entry, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT event, heat, end_hms, updated_at
		FROM actual_end
		WHERE end_hms IS NOT NULL
		ORDER BY event, heat`)
	if err != nil {
		return nil, fmt.Errorf("load all: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			key     model.HeatKey
			hms     string
			updated int64
		)
		if err := rows.Scan(&key.Event, &key.Index, &hms, &updated); err != nil {
			return nil, fmt.Errorf("load all: scan: %w", err)
		}
		e, err := entryOf(key, hms, updated)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load all: iterate: %w", err)
	}
	return out, nil
}

// Clear removes every actual end.
func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.exec(ctx, `DELETE FROM actual_end`); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}
	return n, nil
}

// Count returns the number of recorded actual ends.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	row, err := s.queryRow(ctx, `SELECT COUNT(*) FROM actual_end WHERE end_hms IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Close stops the metrics updater and closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.closed.Store(true)
		err = s.db.Close()
	})
	return err
}

func entryOf(key model.HeatKey, hms string, updated int64) (Entry, error) {
	end, err := clock.ParseTimeOfDay(hms)
	if err != nil {
		return Entry{}, fmt.Errorf("stored end for %s: %w", key, err)
	}
	return Entry{Key: key, End: end, UpdatedAt: time.Unix(0, updated)}, nil
}
