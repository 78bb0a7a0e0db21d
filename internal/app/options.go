package service

import (
	"time"

	"golang.org/x/text/language"

	"github.com/okian/heatsheet/internal/domain/schedule"
	"github.com/okian/heatsheet/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore selects the actual-end store driver and its dsn.
func WithStore(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
			s.storeDSN = dsn
		}
	}
}

// WithQueueSize sets the maximum size of the persistence queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSchedule sets the timing rules.
func WithSchedule(cfg schedule.Config) Option {
	return func(s *Service) {
		s.sched = cfg
	}
}

// WithFallbackSeconds sets the duration used for heats with no estimate.
func WithFallbackSeconds(seconds float64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.fallback = seconds
		}
	}
}

// WithInspectionLead sets how many heats ahead are called to marshalling.
func WithInspectionLead(lead int) Option {
	return func(s *Service) {
		if lead > 0 {
			s.lead = lead
		}
	}
}

// WithDefaultRoster names a start list loaded during Start.
func WithDefaultRoster(path string) Option {
	return func(s *Service) {
		s.defaultRoster = path
	}
}

// WithCollation sets the language participant names are sorted in.
func WithCollation(tag language.Tag) Option {
	return func(s *Service) {
		s.collation = tag
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
