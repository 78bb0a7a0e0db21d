// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Times of day are "HH:MM" strings; durations are seconds or "MM:SS".
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/days"
	"github.com/okian/heatsheet/internal/domain/estimate"
	"github.com/okian/heatsheet/internal/domain/schedule"
	"github.com/okian/heatsheet/internal/validate"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Meet, when set, labels every Prometheus series with meet="<value>".
	Meet string `koanf:"meet"`

	// TurnoverSeconds is the gap between one heat's end and the next start.
	TurnoverSeconds int `koanf:"turnover_seconds" validate:"gte=0"`

	// LunchStart and LunchEnd bound the daily blackout window.
	LunchStart string `koanf:"lunch_start" validate:"required,clock"`
	LunchEnd   string `koanf:"lunch_end" validate:"required,clock"`

	// FallbackDuration is the heat length used when nothing better is known,
	// as "MM:SS". FallbackDurationSeconds wins when positive.
	FallbackDuration        string  `koanf:"fallback_duration" validate:"omitempty,mmss"`
	FallbackDurationSeconds float64 `koanf:"fallback_duration_seconds" validate:"gte=0"`

	// InspectionLead is how many heats ahead of the running one are
	// called to the marshalling area.
	InspectionLead int `koanf:"inspection_lead" validate:"min=1"`

	// UnscheduledDayStart is the session start for events outside every day.
	UnscheduledDayStart string `koanf:"unscheduled_day_start" validate:"required,clock"`

	// Days replaces the built-in three-day table when set (YAML only).
	Days []DayConfig `koanf:"days" validate:"dive"`

	// StoreDriver selects where actual end times persist: memory or sqlite.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory sqlite"`

	// StoreDSN is the sqlite database path.
	StoreDSN string `koanf:"store_dsn" validate:"required_if=StoreDriver sqlite"`

	// PersistQueueSize bounds the persistence queue.
	PersistQueueSize int `koanf:"persist_queue_size" validate:"min=1"`

	// PersistWorkers sets the number of persistence workers.
	PersistWorkers int `koanf:"persist_workers" validate:"min=1"`

	// DefaultRoster is a start list loaded at startup when set.
	DefaultRoster string `koanf:"default_roster"`

	// MaxUploadBytes caps POST /roster bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"min=1"`
}

// DayConfig is one competition day of the day table.
type DayConfig struct {
	Key        string `koanf:"key" validate:"required"`
	Label      string `koanf:"label"`
	StartEvent int    `koanf:"start_event" validate:"min=1"`
	EndEvent   int    `koanf:"end_event" validate:"gtefield=StartEvent"`
	DayStart   string `koanf:"day_start" validate:"required,clock"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		TurnoverSeconds:     10,
		LunchStart:          "12:00",
		LunchEnd:            "13:30",
		FallbackDuration:    "06:00",
		InspectionLead:      schedule.DefaultInspectionLead,
		UnscheduledDayStart: days.DefaultUnscheduledStart.HM(),
		StoreDriver:         "memory",
		PersistQueueSize:    1024,
		PersistWorkers:      1,
		MaxUploadBytes:      32 << 20,
	}
}

// Validate checks the lunch window and day table, then the remaining field
// tags. Lunch and day failures carry ErrInvalidLunch or ErrInvalidDays.
func (c *Config) Validate() error {
	if _, err := c.Lunch(); err != nil {
		return err
	}
	if _, err := c.DayTable(); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Lunch returns the lunch window.
func (c *Config) Lunch() (clock.Window, error) {
	start, err := clock.ParseTimeOfDay(c.LunchStart)
	if err != nil {
		return clock.Window{}, fmt.Errorf("%w: lunch_start: %w", ErrInvalidLunch, err)
	}
	end, err := clock.ParseTimeOfDay(c.LunchEnd)
	if err != nil {
		return clock.Window{}, fmt.Errorf("%w: lunch_end: %w", ErrInvalidLunch, err)
	}
	if end < start {
		return clock.Window{}, fmt.Errorf("%w: lunch_end %s before lunch_start %s", ErrInvalidLunch, c.LunchEnd, c.LunchStart)
	}
	return clock.Window{Start: start, End: end}, nil
}

// DayTable builds the day table, falling back to the built-in meet.
func (c *Config) DayTable() (days.Table, error) {
	unscheduled, err := clock.ParseTimeOfDay(c.UnscheduledDayStart)
	if err != nil {
		return days.Table{}, fmt.Errorf("%w: unscheduled_day_start: %w", ErrInvalidDays, err)
	}

	if len(c.Days) == 0 {
		return days.NewTable(days.DefaultTable().Rules(), unscheduled), nil
	}

	rules := make([]days.Rule, 0, len(c.Days))
	for _, d := range c.Days {
		start, err := clock.ParseTimeOfDay(d.DayStart)
		if err != nil {
			return days.Table{}, fmt.Errorf("%w: day %s: %w", ErrInvalidDays, d.Key, err)
		}
		label := d.Label
		if label == "" {
			label = d.Key
		}
		rules = append(rules, days.Rule{
			Key:        d.Key,
			Label:      label,
			StartEvent: d.StartEvent,
			EndEvent:   d.EndEvent,
			DayStart:   start,
		})
	}
	t := days.NewTable(rules, unscheduled)
	if err := t.Validate(); err != nil {
		return days.Table{}, fmt.Errorf("%w: %w", ErrInvalidDays, err)
	}
	return t, nil
}

// FallbackSeconds resolves the fallback heat duration.
func (c *Config) FallbackSeconds() float64 {
	if c.FallbackDurationSeconds > 0 {
		return c.FallbackDurationSeconds
	}
	if secs, ok := clock.ParseDuration(c.FallbackDuration); ok && secs > 0 {
		return secs
	}
	return estimate.DefaultFallbackSeconds
}

// Schedule derives the scheduler configuration.
func (c *Config) Schedule() (schedule.Config, error) {
	lunch, err := c.Lunch()
	if err != nil {
		return schedule.Config{}, err
	}
	table, err := c.DayTable()
	if err != nil {
		return schedule.Config{}, err
	}
	return schedule.Config{
		Turnover: time.Duration(c.TurnoverSeconds) * time.Second,
		Lunch:    lunch,
		Days:     table,
	}, nil
}
