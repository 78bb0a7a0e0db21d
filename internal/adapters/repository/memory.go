package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
)

type memRecord struct {
	end     clock.TimeOfDay
	cleared bool
	at      time.Time
}

// MemoryStore keeps actual end times in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	byKey  map[model.HeatKey]memRecord
	closed bool

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	s := &MemoryStore{
		byKey:    make(map[model.HeatKey]memRecord),
		stopChan: make(chan struct{}),
	}
	metricsUpdater(ctx, &s.wg, s.stopChan, o.metricsUpdateInterval, s)
	return s
}

func (s *MemoryStore) write(key model.HeatKey, rec memRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if prev, ok := s.byKey[key]; ok && rec.at.Before(prev.at) {
		return nil
	}
	s.byKey[key] = rec
	return nil
}

// Save records end as the actual end of key.
func (s *MemoryStore) Save(_ context.Context, key model.HeatKey, end clock.TimeOfDay, at time.Time) error {
	return s.write(key, memRecord{end: end, at: at})
}

// Remove clears the actual end of key.
func (s *MemoryStore) Remove(_ context.Context, key model.HeatKey, at time.Time) error {
	return s.write(key, memRecord{cleared: true, at: at})
}

// Load returns the actual end of key.
func (s *MemoryStore) Load(_ context.Context, key model.HeatKey) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Entry{}, ErrClosed
	}
	rec, ok := s.byKey[key]
	if !ok || rec.cleared {
		return Entry{}, ErrNotFound
	}
	return Entry{Key: key, End: rec.end, UpdatedAt: rec.at}, nil
}

// LoadAll returns every recorded actual end ordered by key.
func (s *MemoryStore) LoadAll(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]Entry, 0, len(s.byKey))
	for k, rec := range s.byKey {
		if rec.cleared {
			continue
		}
		out = append(out, Entry{Key: k, End: rec.end, UpdatedAt: rec.at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Event != out[j].Key.Event {
			return out[i].Key.Event < out[j].Key.Event
		}
		return out[i].Key.Index < out[j].Key.Index
	})
	return out, nil
}

// Clear removes every actual end.
func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	n := 0
	for _, rec := range s.byKey {
		if !rec.cleared {
			n++
		}
	}
	s.byKey = make(map[model.HeatKey]memRecord)
	return n, nil
}

// Count returns the number of recorded actual ends.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	n := 0
	for _, rec := range s.byKey {
		if !rec.cleared {
			n++
		}
	}
	return n, nil
}

// Close stops the metrics updater. Further calls return ErrClosed.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	s.wg.Wait()
	return nil
}
