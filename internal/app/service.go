// Package service holds the loaded heat schedule, the operator's actual end
// times and their persistence, and serves projections to the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/okian/heatsheet/internal/adapters/ingest"
	eventqueue "github.com/okian/heatsheet/internal/adapters/mq/queue"
	workerpool "github.com/okian/heatsheet/internal/adapters/mq/worker"
	"github.com/okian/heatsheet/internal/adapters/repository"
	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/days"
	"github.com/okian/heatsheet/internal/domain/estimate"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/schedule"
	"github.com/okian/heatsheet/internal/domain/types"
	"github.com/okian/heatsheet/internal/validate"
	"github.com/okian/heatsheet/pkg/logger"
	"github.com/okian/heatsheet/pkg/metrics"
)

const (
	defaultTurnover   = 10 * time.Second
	storeRetries      = 2
	storeRetryBackoff = 50 * time.Millisecond
)

// Service implements the API dependencies for the heat schedule.
type Service struct {
	mu sync.RWMutex

	// Persistence
	store       repository.Store
	queue       *eventqueue.InMemoryQueue
	pool        *workerpool.Pool
	storeDriver string
	storeDSN    string
	queueSize   int
	workerCount int

	// Schedule
	sched         schedule.Config
	fallback      float64
	lead          int
	collation     language.Tag
	defaultRoster string
	batch         *model.Batch
	overrides     schedule.Overrides
	dropped       int64

	// State
	started bool
	now     func() time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: repository.DriverMemory,
		queueSize:   1024,
		workerCount: 1,
		sched: schedule.Config{
			Turnover: defaultTurnover,
			Lunch:    clock.Window{Start: clock.Of(12, 0, 0), End: clock.Of(13, 30, 0)},
			Days:     days.DefaultTable(),
		},
		fallback:  estimate.DefaultFallbackSeconds,
		lead:      schedule.DefaultInspectionLead,
		collation: language.TraditionalChinese,
		overrides: schedule.Overrides{},
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store, restores persisted actual ends, starts the
// persistence workers and loads the default roster when one is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.log().Info(ctx, "starting heatsheet service...", logger.String("store", s.storeDriver))

	store, err := repository.Open(ctx, s.storeDriver, s.storeDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	entries, err := store.LoadAll(ctx)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("restore actual ends: %w", err)
	}
	s.overrides = schedule.Overrides(repository.Overrides(entries))
	metrics.UpdateOverrideCount(len(s.overrides))

	s.store = store
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.ApplyFunc(
		func(ctx context.Context, c workerpool.Change) error {
			return repository.Apply(ctx, store, c)
		}),
		workerpool.WithRetry(storeRetries, storeRetryBackoff),
	)
	// Workers outlive the start request; Stop shuts them down.
	s.pool.Start(context.WithoutCancel(ctx))

	if s.defaultRoster != "" {
		if err := s.loadFileLocked(ctx, s.defaultRoster); err != nil {
			s.log().Error(ctx, "default roster not loaded",
				logger.String("path", s.defaultRoster), logger.Error(err))
		}
	}

	s.started = true
	s.log().Info(ctx, "heatsheet service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("restoredActualEnds", len(s.overrides)),
	)

	return nil
}

// Stop drains pending persistence and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.log().Info(ctx, "stopping heatsheet service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.log().Warn(ctx, "persistence not fully drained", logger.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log().Error(ctx, "error closing store", logger.Error(err))
		}
	}

	s.started = false
	s.log().Info(ctx, "heatsheet service stopped")
}

// LoadRoster replaces the current batch with the start list read from r.
// name selects the format by extension. On error the prior batch is kept.
func (s *Service) LoadRoster(ctx context.Context, name string, r io.Reader) (*model.Batch, error) {
	s.mu.RLock()
	table := s.sched.Days
	fallback := s.fallback
	s.mu.RUnlock()

	batch, err := ingest.Load(ctx, name, r, table)
	if err != nil {
		metrics.RecordRosterError()
		metrics.RecordErrorByComponent("service", "roster")
		return nil, err
	}
	batch.Heats = estimate.Resolve(batch.Heats, fallback)

	s.mu.Lock()
	s.batch = batch
	s.mu.Unlock()

	metrics.RecordRosterLoad()
	metrics.UpdateHeatsLoaded(len(batch.Heats))
	s.log().Info(ctx, "roster loaded",
		logger.String("batch", batch.ID.String()),
		logger.String("source", batch.Source),
		logger.Int("records", batch.Records),
		logger.Int("heats", len(batch.Heats)),
	)
	return batch, nil
}

// LoadRosterFile loads the start list at path.
func (s *Service) LoadRosterFile(ctx context.Context, path string) (*model.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = f.Close() }()
	return s.LoadRoster(ctx, path, f)
}

// loadFileLocked is LoadRosterFile for callers already holding s.mu.
func (s *Service) loadFileLocked(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer func() { _ = f.Close() }()

	batch, err := ingest.Load(ctx, path, f, s.sched.Days)
	if err != nil {
		metrics.RecordRosterError()
		return err
	}
	batch.Heats = estimate.Resolve(batch.Heats, s.fallback)
	s.batch = batch
	metrics.RecordRosterLoad()
	metrics.UpdateHeatsLoaded(len(batch.Heats))
	s.log().Info(ctx, "default roster loaded",
		logger.String("source", batch.Source), logger.Int("heats", len(batch.Heats)))
	return nil
}

// Batch returns the current batch, or nil before any roster is loaded.
func (s *Service) Batch() *model.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}

// Projection projects the whole schedule and returns the heats matching f.
func (s *Service) Projection(ctx context.Context, f model.Filter) []model.Projected {
	start := time.Now()
	s.mu.RLock()
	var heats []model.Heat
	if s.batch != nil {
		heats = s.batch.Heats
	}
	out := schedule.Project(heats, s.overrides, s.sched, f)
	s.mu.RUnlock()

	metrics.RecordProjection(metrics.Since(start))
	s.log().Debug(ctx, "schedule projected",
		logger.Int("heats", len(heats)), logger.Int("shown", len(out)))
	return out
}

// Board returns the running and inspection heats of day at now. An empty
// day means the first day of the schedule.
func (s *Service) Board(ctx context.Context, day string, now clock.TimeOfDay) schedule.Board {
	projected := s.Projection(ctx, model.Filter{})
	s.mu.RLock()
	lead := s.lead
	s.mu.RUnlock()
	return schedule.CurrentBoard(projected, day, now, lead)
}

// FilterOptions lists the distinct values each filter can take.
func (s *Service) FilterOptions() model.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var heats []model.Heat
	if s.batch != nil {
		heats = s.batch.Heats
	}
	return schedule.Options(heats, s.sched.Days, s.collation)
}

// SetActualEnd records the operator-observed end of a heat from "HH:MM" (or
// "HH:MM:SS") text, moved out of lunch. Empty text clears it. Either way the
// schedule recomputes on the next projection and the change is persisted in
// the background.
func (s *Service) SetActualEnd(ctx context.Context, key model.HeatKey, text string) (model.EndOverride, error) {
	var end model.EndOverride
	if text != "" {
		t, err := clock.ParseTimeOfDay(text)
		if err != nil {
			return model.Estimated(), fmt.Errorf("actual end for %s: %w", key, err)
		}
		s.mu.RLock()
		end = model.Manual(s.sched.Lunch.Clamp(t))
		s.mu.RUnlock()
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return model.Estimated(), ErrNotStarted
	}
	if s.batch != nil && !hasHeat(s.batch.Heats, key) {
		s.mu.Unlock()
		return model.Estimated(), fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if end.IsManual() {
		s.overrides[key] = end.At()
	} else {
		delete(s.overrides, key)
	}
	count := len(s.overrides)
	change := model.NewActualEndChange(key, end, s.now())
	q := s.queue
	s.mu.Unlock()

	if end.IsManual() {
		metrics.RecordOverrideSet()
	} else {
		metrics.RecordOverrideCleared(1)
	}
	metrics.UpdateOverrideCount(count)
	s.persist(ctx, q, change)

	s.log().Info(ctx, "actual end updated",
		logger.String("heat", key.String()),
		logger.Bool("manual", end.IsManual()),
		logger.String("end", end.At().String()),
	)
	return end, nil
}

// ClearActualEnds removes every operator end time and returns how many
// there were.
func (s *Service) ClearActualEnds(ctx context.Context) (int, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return 0, ErrNotStarted
	}
	n := len(s.overrides)
	s.overrides = schedule.Overrides{}
	change := model.NewClearAll(s.now())
	q := s.queue
	s.mu.Unlock()

	metrics.RecordOverrideCleared(n)
	metrics.UpdateOverrideCount(0)
	s.persist(ctx, q, change)
	s.log().Info(ctx, "actual ends cleared", logger.Int("count", n))
	return n, nil
}

// ActualEnds returns a copy of the operator end times.
func (s *Service) ActualEnds() schedule.Overrides {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(schedule.Overrides, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}

// persist hands the change to q, the queue that was current when the change
// was made. A full or closed queue drops it; the in-memory schedule is
// already updated.
func (s *Service) persist(ctx context.Context, q *eventqueue.InMemoryQueue, change model.ActualEndChange) {
	if q.Enqueue(ctx, change) {
		return
	}
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
	s.log().Warn(ctx, "actual end not persisted: queue full or closed",
		logger.String("change", change.ID.String()),
		logger.String("heat", change.Key.String()),
	)
}

// ScheduleConfig returns the operator-editable timing rules.
func (s *Service) ScheduleConfig() types.ScheduleConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.ScheduleConfig{
		TurnoverSeconds:         int(s.sched.Turnover / time.Second),
		LunchStart:              s.sched.Lunch.Start.HM(),
		LunchEnd:                s.sched.Lunch.End.HM(),
		FallbackDurationSeconds: s.fallback,
	}
}

// UpdateScheduleConfig replaces the timing rules. A changed fallback
// re-resolves the loaded batch.
func (s *Service) UpdateScheduleConfig(ctx context.Context, c types.ScheduleConfig) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	start, err := clock.ParseTimeOfDay(c.LunchStart)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	end, err := clock.ParseTimeOfDay(c.LunchEnd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	if end < start {
		return fmt.Errorf("%w: lunch_end before lunch_start", ErrInvalidSchedule)
	}

	s.mu.Lock()
	s.sched.Turnover = time.Duration(c.TurnoverSeconds) * time.Second
	s.sched.Lunch = clock.Window{Start: start, End: end}
	if c.FallbackDurationSeconds != s.fallback {
		s.fallback = c.FallbackDurationSeconds
		if s.batch != nil {
			b := *s.batch
			b.Heats = estimate.Resolve(b.Heats, s.fallback)
			s.batch = &b
		}
	}
	s.mu.Unlock()

	s.log().Info(ctx, "schedule config updated",
		logger.Int("turnoverSeconds", c.TurnoverSeconds),
		logger.String("lunchStart", c.LunchStart),
		logger.String("lunchEnd", c.LunchEnd),
		logger.Float64("fallbackSeconds", c.FallbackDurationSeconds),
	)
	return nil
}

// Now returns the service's wall clock reading.
func (s *Service) Now() time.Time { return s.now() }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"storeDriver": s.storeDriver,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"actualEnds":  len(s.overrides),
		"dropped":     s.dropped,
		"heats":       0,
	}
	if s.batch != nil {
		stats["heats"] = len(s.batch.Heats)
		stats["batchID"] = s.batch.ID.String()
		stats["source"] = s.batch.Source
		stats["loadedAt"] = s.batch.LoadedAt
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["persisted"] = s.pool.Processed()
		stats["persistFailures"] = s.pool.Failed()
		if n, err := s.store.Count(ctx); err == nil {
			stats["storedActualEnds"] = n
			metrics.UpdateStoreRecords(n)
		} else if !errors.Is(err, repository.ErrClosed) {
			s.log().Warn(ctx, "store count failed", logger.Error(err))
		}
	}

	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

func hasHeat(heats []model.Heat, key model.HeatKey) bool {
	for _, h := range heats {
		if h.Key() == key {
			return true
		}
	}
	return false
}
