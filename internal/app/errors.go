package service

import (
	"errors"

	"github.com/okian/heatsheet/internal/domain/clock"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNotFound        = errors.New("heat not found")
	ErrInvalidSchedule = errors.New("invalid schedule config")

	// ErrInvalidTime is returned for malformed operator times.
	ErrInvalidTime = clock.ErrInvalidTime
)
