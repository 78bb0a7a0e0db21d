// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
)

// HeatEntry is the read shape of one projected heat.
type HeatEntry struct {
	Event            int              `json:"event"`
	Heat             int              `json:"heat"`
	HeatCount        int              `json:"heat_count"`
	AgeGroup         string           `json:"age_group"`
	Gender           string           `json:"gender"`
	EventName        string           `json:"event_name"`
	Participants     []string         `json:"participants,omitempty"`
	DayKey           string           `json:"day_key"`
	DayLabel         string           `json:"day_label"`
	EstimatedSeconds float64          `json:"estimated_seconds"`
	Estimated        string           `json:"estimated"`
	ScheduledStart   clock.TimeOfDay  `json:"scheduled_start"`
	ScheduledEnd     clock.TimeOfDay  `json:"scheduled_end"`
	ActualEnd        *clock.TimeOfDay `json:"actual_end,omitempty"`
	StartAt          time.Time        `json:"start_at"`
	EndAt            time.Time        `json:"end_at"`
}

// NewHeatEntry renders p, anchoring wall-clock times to date.
func NewHeatEntry(p model.Projected, date time.Time) HeatEntry {
	return HeatEntry{
		Event:            p.Event,
		Heat:             p.Index,
		HeatCount:        p.Count,
		AgeGroup:         p.AgeGroup,
		Gender:           p.Gender,
		EventName:        p.EventName,
		Participants:     p.Participants,
		DayKey:           p.DayKey,
		DayLabel:         p.DayLabel,
		EstimatedSeconds: p.EstimatedSeconds,
		Estimated:        clock.FormatDuration(p.EstimatedSeconds),
		ScheduledStart:   p.ScheduledStart,
		ScheduledEnd:     p.ScheduledEnd,
		ActualEnd:        p.ActualEnd.Ptr(),
		StartAt:          p.ScheduledStart.On(date),
		EndAt:            p.DisplayEnd().On(date),
	}
}

// Board is the read shape of the running and next-to-marshal heats.
type Board struct {
	Now        clock.TimeOfDay `json:"now"`
	Current    *HeatEntry      `json:"current"`
	Inspection *HeatEntry      `json:"inspection"`
}

// ScheduleConfig is the operator-editable part of the configuration.
type ScheduleConfig struct {
	TurnoverSeconds         int     `json:"turnover_seconds" validate:"gte=0"`
	LunchStart              string  `json:"lunch_start" validate:"required,clock"`
	LunchEnd                string  `json:"lunch_end" validate:"required,clock"`
	FallbackDurationSeconds float64 `json:"fallback_duration_seconds" validate:"gt=0"`
}
