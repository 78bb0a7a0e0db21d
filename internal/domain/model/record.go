package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/heatsheet/internal/domain/clock"
)

// Record is one flat row of a start list: a single participant in a heat.
type Record struct {
	Event       string // raw event number
	Heat        string // "index/count"
	AgeGroup    string
	Gender      string
	EventName   string
	Participant string
	Team        string
	Result      string // entry time, MM:SS or MM:SS.cc, empty when none
}

// Batch is one wholesale load of heats; a new batch replaces the prior one.
type Batch struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Records  int
	Heats    []Heat
}

// ActualEndChange is a persistence message for one operator edit. When All
// is set the change clears every heat and Key is ignored.
type ActualEndChange struct {
	ID  uuid.UUID
	Key HeatKey
	End EndOverride
	At  time.Time
	All bool
}

// NewActualEndChange stamps a change with a fresh id.
func NewActualEndChange(key HeatKey, end EndOverride, at time.Time) ActualEndChange {
	return ActualEndChange{ID: uuid.New(), Key: key, End: end, At: at}
}

// NewClearAll stamps a change that removes every override.
func NewClearAll(at time.Time) ActualEndChange {
	return ActualEndChange{ID: uuid.New(), At: at, All: true}
}

// Cleared reports whether the change removes the override.
func (c ActualEndChange) Cleared() bool { return !c.End.IsManual() }

// EndAt returns the recorded time; meaningless when Cleared.
func (c ActualEndChange) EndAt() clock.TimeOfDay { return c.End.At() }
