// Package days partitions event numbers into competition days.
package days

import (
	"fmt"

	"github.com/okian/heatsheet/internal/domain/clock"
)

// DefaultUnscheduledStart is the session start used for events that fall
// outside every rule.
var DefaultUnscheduledStart = clock.Of(8, 15, 0)

// Rule maps an inclusive range of event numbers to one competition day.
type Rule struct {
	Key        string          `json:"key"`
	Label      string          `json:"label"`
	StartEvent int             `json:"start_event"`
	EndEvent   int             `json:"end_event"`
	DayStart   clock.TimeOfDay `json:"day_start"`
}

// Covers reports whether event falls in the rule's range.
func (r Rule) Covers(event int) bool {
	return event >= r.StartEvent && event <= r.EndEvent
}

// Table is an ordered, immutable list of day rules. Lookups return the first
// matching rule.
type Table struct {
	rules            []Rule
	unscheduledStart clock.TimeOfDay
}

// NewTable copies rules into a Table. A zero unscheduledStart selects
// DefaultUnscheduledStart.
func NewTable(rules []Rule, unscheduledStart clock.TimeOfDay) Table {
	if unscheduledStart == 0 {
		unscheduledStart = DefaultUnscheduledStart
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return Table{rules: cp, unscheduledStart: unscheduledStart}
}

// DefaultTable returns the three-day layout of a typical age-group meet.
func DefaultTable() Table {
	return NewTable([]Rule{
		{Key: "d1", Label: "Day 1", StartEvent: 1, EndEvent: 28, DayStart: clock.Of(9, 0, 0)},
		{Key: "d2", Label: "Day 2", StartEvent: 29, EndEvent: 82, DayStart: clock.Of(8, 15, 0)},
		{Key: "d3", Label: "Day 3", StartEvent: 83, EndEvent: 136, DayStart: clock.Of(8, 15, 0)},
	}, DefaultUnscheduledStart)
}

// Rules returns a copy of the table's rules.
func (t Table) Rules() []Rule {
	cp := make([]Rule, len(t.rules))
	copy(cp, t.rules)
	return cp
}

// UnscheduledStart is the session start of the pseudo-day for unmatched events.
func (t Table) UnscheduledStart() clock.TimeOfDay {
	if t.unscheduledStart == 0 {
		return DefaultUnscheduledStart
	}
	return t.unscheduledStart
}

// KeyOf returns the key of the first rule covering event, or "".
func (t Table) KeyOf(event int) string {
	for _, r := range t.rules {
		if r.Covers(event) {
			return r.Key
		}
	}
	return ""
}

// LabelOf returns the label for key, or "" when unknown.
func (t Table) LabelOf(key string) string {
	if r, ok := t.rule(key); ok {
		return r.Label
	}
	return ""
}

// StartOf returns the session start for key. Unknown and empty keys use the
// unscheduled start.
func (t Table) StartOf(key string) clock.TimeOfDay {
	if r, ok := t.rule(key); ok {
		return r.DayStart
	}
	return t.UnscheduledStart()
}

func (t Table) rule(key string) (Rule, bool) {
	if key == "" {
		return Rule{}, false
	}
	for _, r := range t.rules {
		if r.Key == key {
			return r, true
		}
	}
	return Rule{}, false
}

// Validate checks keys are present and unique and ranges do not overlap.
func (t Table) Validate() error {
	seen := make(map[string]struct{}, len(t.rules))
	for i, r := range t.rules {
		if r.Key == "" {
			return fmt.Errorf("%w: rule %d has an empty key", ErrInvalidTable, i)
		}
		if _, dup := seen[r.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidTable, r.Key)
		}
		seen[r.Key] = struct{}{}
		if r.StartEvent > r.EndEvent {
			return fmt.Errorf("%w: rule %q range %d-%d is inverted", ErrInvalidTable, r.Key, r.StartEvent, r.EndEvent)
		}
		for _, o := range t.rules[:i] {
			if r.StartEvent <= o.EndEvent && o.StartEvent <= r.EndEvent {
				return fmt.Errorf("%w: rule %q overlaps %q", ErrInvalidTable, r.Key, o.Key)
			}
		}
	}
	return nil
}
