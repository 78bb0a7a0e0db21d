// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
)

// HeatKey identifies a heat for operator overrides and their persistence.
type HeatKey struct {
	Event int `json:"event"`
	Index int `json:"heat"`
}

// String renders the key as "event_heat", the persisted form.
func (k HeatKey) String() string { return fmt.Sprintf("%d_%d", k.Event, k.Index) }

// HeatID is the full identity of a heat within a loaded schedule.
type HeatID struct {
	Event int
	Index int
	Count int
}

// Heat is one race within an event, as produced by ingestion and annotated
// by the duration resolver.
type Heat struct {
	Event             int       // event number, positive
	Index             int       // 1-based heat position within the event
	Count             int       // heats in the event
	AgeGroup          string    // free text
	Gender            string    // free text
	EventName         string    // stroke/distance, free text
	Participants      []string  // swimmer names in entry order
	RecordedDurations []float64 // seconds, one per entry time on file
	EstimatedSeconds  float64   // derived by the resolver
	DayKey            string    // derived from Event via the day table
	DayLabel          string
}

// Key returns the override key of h.
func (h Heat) Key() HeatKey { return HeatKey{Event: h.Event, Index: h.Index} }

// ID returns the unique identity of h.
func (h Heat) ID() HeatID { return HeatID{Event: h.Event, Index: h.Index, Count: h.Count} }

// Descriptor renders the heat as "index/count".
func (h Heat) Descriptor() string { return fmt.Sprintf("%d/%d", h.Index, h.Count) }

// Estimate returns the resolved duration as a time.Duration.
func (h Heat) Estimate() time.Duration { return clock.Seconds(h.EstimatedSeconds) }

// Sort orders heats by event number then heat index, the race sequence.
func Sort(heats []Heat) {
	sort.SliceStable(heats, func(i, j int) bool {
		if heats[i].Event != heats[j].Event {
			return heats[i].Event < heats[j].Event
		}
		return heats[i].Index < heats[j].Index
	})
}

// Projected is a heat with its computed schedule.
type Projected struct {
	Heat
	ScheduledStart clock.TimeOfDay
	ScheduledEnd   clock.TimeOfDay
	ActualEnd      EndOverride
}

// DisplayEnd is the actual end when one was recorded, the scheduled end otherwise.
func (p Projected) DisplayEnd() clock.TimeOfDay {
	if p.ActualEnd.IsManual() {
		return p.ActualEnd.At()
	}
	return p.ScheduledEnd
}

// Running reports whether now falls within [ScheduledStart, DisplayEnd).
func (p Projected) Running(now clock.TimeOfDay) bool {
	return now >= p.ScheduledStart && now < p.DisplayEnd()
}
