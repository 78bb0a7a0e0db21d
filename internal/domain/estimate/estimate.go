// Package estimate resolves how long each heat occupies the pool.
package estimate

import (
	"github.com/okian/heatsheet/internal/domain/model"
)

// DefaultFallbackSeconds applies when neither a heat nor its event has any
// entry time on file.
const DefaultFallbackSeconds = 360

// Resolver derives EstimatedSeconds for every heat of a batch.
type Resolver interface {
	Resolve(heats []model.Heat) []model.Heat
}

// MaxResolver schedules each heat for its slowest entrant.
//
// Resolution order: the maximum of the heat's own recorded durations; else
// the maximum own estimate among heats of the same event; else the fallback.
type MaxResolver struct {
	fallback float64
}

// Option applies a configuration option to the MaxResolver.
type Option func(*MaxResolver)

// WithFallbackSeconds sets the duration used when nothing can be resolved.
func WithFallbackSeconds(seconds float64) Option {
	return func(r *MaxResolver) {
		if seconds > 0 {
			r.fallback = seconds
		}
	}
}

// NewMaxResolver creates a resolver with configuration options.
func NewMaxResolver(opts ...Option) *MaxResolver {
	r := &MaxResolver{fallback: DefaultFallbackSeconds}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fallback returns the configured fallback in seconds.
func (r *MaxResolver) Fallback() float64 { return r.fallback }

// Resolve returns a copy of heats with EstimatedSeconds set. The input slice
// is not modified.
func (r *MaxResolver) Resolve(heats []model.Heat) []model.Heat {
	return Resolve(heats, r.fallback)
}

// Resolve is the functional form of MaxResolver.Resolve. A non-positive
// fallback selects DefaultFallbackSeconds.
func Resolve(heats []model.Heat, fallback float64) []model.Heat {
	if fallback <= 0 {
		fallback = DefaultFallbackSeconds
	}

	eventMax := make(map[int]float64)
	for _, h := range heats {
		own, ok := maxOf(h.RecordedDurations)
		if !ok {
			continue
		}
		if cur, seen := eventMax[h.Event]; !seen || own > cur {
			eventMax[h.Event] = own
		}
	}

	out := make([]model.Heat, len(heats))
	for i, h := range heats {
		switch own, ok := maxOf(h.RecordedDurations); {
		case ok:
			h.EstimatedSeconds = own
		default:
			if sib, found := eventMax[h.Event]; found {
				h.EstimatedSeconds = sib
			} else {
				h.EstimatedSeconds = fallback
			}
		}
		out[i] = h
	}
	return out
}

// maxOf returns the largest positive value in xs.
func maxOf(xs []float64) (float64, bool) {
	best, ok := 0.0, false
	for _, x := range xs {
		if x > 0 && (!ok || x > best) {
			best, ok = x, true
		}
	}
	return best, ok
}
