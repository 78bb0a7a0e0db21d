// Package schedule projects start and end times for an ordered heat list.
//
// Projection is a deterministic fold over the full race sequence: a cursor
// walks heats in (event, heat) order, resetting at each day boundary,
// skipping the lunch window, and advancing past each heat's actual or
// scheduled end plus turnover. Display filters are applied only after the
// fold so that hidden heats still occupy pool time.
package schedule

import (
	"slices"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/days"
	"github.com/okian/heatsheet/internal/domain/model"
)

// Config carries the timing rules of one competition.
type Config struct {
	Turnover time.Duration
	Lunch    clock.Window
	Days     days.Table
}

// Cursor is the fold accumulator: the next free start time within the
// current day.
type Cursor struct {
	At       clock.TimeOfDay
	DayKey   string
	DayLabel string
	started  bool
}

// Step stamps h and returns the cursor for the next heat. The first heat,
// and any heat whose day differs from the cursor's, restarts at that day's
// session start; the unscheduled pseudo-day (empty key) is a day of its own.
func (c Cursor) Step(h model.Heat, end model.EndOverride, cfg Config) (model.Projected, Cursor) {
	if !c.started || h.DayKey != c.DayKey || h.DayLabel != c.DayLabel {
		c = Cursor{
			At:       cfg.Days.StartOf(h.DayKey),
			DayKey:   h.DayKey,
			DayLabel: h.DayLabel,
			started:  true,
		}
	}

	start := cfg.Lunch.Clamp(c.At)
	p := model.Projected{
		Heat:           h,
		ScheduledStart: start,
		ScheduledEnd:   cfg.Lunch.AddSkipping(start, h.Estimate()),
		ActualEnd:      end,
	}
	c.At = cfg.Lunch.Advance(p.DisplayEnd(), cfg.Turnover)
	return p, c
}

// Overrides maps heats to operator-observed end times.
type Overrides map[model.HeatKey]clock.TimeOfDay

// End returns the override for key, Estimated when none is recorded.
func (o Overrides) End(key model.HeatKey) model.EndOverride {
	if at, ok := o[key]; ok {
		return model.Manual(at)
	}
	return model.Estimated()
}

// Project computes the schedule of every heat and then returns those that
// match f, in race order. Heats outside every day range race last, as one
// contiguous pseudo-day, wherever their event numbers fall. heats must already
// carry resolved estimates; they are sorted on a copy, so the caller's slice
// is untouched.
func Project(heats []model.Heat, overrides Overrides, cfg Config, f model.Filter) []model.Projected {
	seq := make([]model.Heat, len(heats))
	copy(seq, heats)
	model.Sort(seq)
	slices.SortStableFunc(seq, func(a, b model.Heat) int {
		return cmpUnscheduled(a.DayKey == "", b.DayKey == "")
	})

	all := make([]model.Projected, 0, len(seq))
	var cur Cursor
	for _, h := range seq {
		var p model.Projected
		p, cur = cur.Step(h, overrides.End(h.Key()), cfg)
		all = append(all, p)
	}
	return Apply(all, f)
}

func cmpUnscheduled(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// Apply filters an already projected sequence without touching its times.
func Apply(projected []model.Projected, f model.Filter) []model.Projected {
	if f.IsZero() {
		return projected
	}
	out := make([]model.Projected, 0, len(projected))
	for _, p := range projected {
		if f.Match(p.Heat) {
			out = append(out, p)
		}
	}
	return out
}
