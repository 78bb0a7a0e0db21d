package worker

import (
	"time"

	"github.com/okian/heatsheet/pkg/logger"
)

// Option configures an InMemoryWorker. Pool options apply to every worker of
// the pool.
type Option func(*InMemoryWorker)

// WithName names the worker in its log lines.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRetry retries a rejected store write up to attempts more times,
// doubling backoff between tries. A busy SQLite file usually clears within a
// few milliseconds.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(w *InMemoryWorker) {
		if attempts < 0 {
			attempts = 0
		}
		w.retries = attempts
		if backoff > 0 {
			w.backoff = backoff
		}
	}
}
