// Package worker applies queued actual-end changes to the store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/heatsheet/internal/adapters/mq/queue"
	"github.com/okian/heatsheet/pkg/logger"
	"github.com/okian/heatsheet/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 1
	defaultRetryBackoff = 25 * time.Millisecond
	poolShutdownTimeout = 30 * time.Second
)

// Change is what workers read off the queue.
type Change = queue.Change

// Applier writes one change to durable storage.
type Applier interface {
	Apply(ctx context.Context, c Change) error
}

// ApplyFunc adapts a function to Applier.
type ApplyFunc func(ctx context.Context, c Change) error

// Apply calls f.
func (f ApplyFunc) Apply(ctx context.Context, c Change) error { return f(ctx, c) }

// Queue defines how workers receive changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Change
}

// Worker applies changes until its queue is drained or it is told to stop.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// counters are shared by the workers of a pool.
type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
	busy      atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string
	stats   *counters
	retries int
	backoff time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		stats:    &counters{},
		backoff:  defaultRetryBackoff,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	changes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := w.process(ctx, c); err != nil {
				w.logger.Error(ctx, "error persisting actual end", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, c Change) error {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.stats.busy.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.stats.busy.Add(-1)))
		metrics.RecordWorkerProcessingLatency(metrics.Since(start))
	}()

	if err := w.apply(ctx, c); err != nil {
		w.stats.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		w.logger.Error(ctx, "store write failed",
			logger.String("change_id", c.ID.String()),
			logger.String("heat", c.Key.String()),
			logger.Error(err),
		)
		return fmt.Errorf("persist change %s: %w", c.ID, err)
	}

	w.stats.processed.Add(1)
	w.logger.Debug(ctx, "actual end persisted",
		logger.String("heat", c.Key.String()),
		logger.Bool("cleared", c.Cleared()),
		logger.Bool("all", c.All),
	)
	return nil
}

// apply writes c, retrying rejected writes while attempts remain.
func (w *InMemoryWorker) apply(ctx context.Context, c Change) error {
	wait := w.backoff
	err := w.applier.Apply(ctx, c)
	for attempt := 1; err != nil && attempt <= w.retries; attempt++ {
		metrics.RecordErrorByComponent("worker", "store_retry")
		w.logger.Warn(ctx, "store write rejected; retrying",
			logger.String("heat", c.Key.String()),
			logger.Int("attempt", attempt),
			logger.Duration("backoff", wait),
			logger.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		wait *= 2
		err = w.applier.Apply(ctx, c)
	}
	return err
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	stats   *counters

	logger logger.Logger
}

// NewPool creates a new worker pool. Change order across heats is only
// preserved with a single worker.
func NewPool(workerCount int, queue Queue, applier Applier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		stats:   &counters{},
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := make([]Option, 0, len(opts)+1)
		workerOpts = append(workerOpts, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(queue, applier, workerOpts...)
		w.stats = pool.stats
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of changes written successfully.
func (p *Pool) Processed() int64 { return p.stats.processed.Load() }

// Failed returns the number of changes the store rejected.
func (p *Pool) Failed() int64 { return p.stats.failed.Load() }

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			close(w.shutdown)
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", shutdownCtx.Err())
	}
	return nil
}
