// Package queue carries actual-end changes from the service to the
// persistence workers.
//
// Enqueue never blocks: the operator's edit is already applied in memory, so
// a full queue drops the persistence message instead of stalling the caller.
package queue

import (
	"context"
	"sync"

	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Change is the payload type flowing through the queue.
type Change = model.ActualEndChange

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a change to the queue.
	// Returns false if the queue is full or closed and the change was dropped.
	Enqueue(ctx context.Context, c Change) bool
	// Dequeue returns a channel that will receive changes as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Change
	// Len returns the current number of queued changes.
	Len(ctx context.Context) int
	// Close stops accepting changes.
	Close() error
	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel sized to its
// capacity.
type InMemoryQueue struct {
	changes  chan Change
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds how many changes may wait for a worker. Non-positive
// values keep the default.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates an empty queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.changes = make(chan Change, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

func (q *InMemoryQueue) report(size int) {
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Enqueue adds a change to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Change) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if len(q.changes) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	select {
	case q.changes <- c:
		metrics.RecordQueueEnqueue()
		q.report(len(q.changes))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive changes as they become
// available. It is closed once the queue is closed and drained, or when ctx
// ends, even while the queue is empty.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Change {
	out := make(chan Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-q.changes:
				if !ok {
					return
				}
				select {
				case out <- c:
					metrics.RecordQueueDequeue()
					q.report(len(q.changes))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued changes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.changes)
	q.report(size)
	return size
}

// Close stops accepting changes. Changes already queued are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.changes)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
