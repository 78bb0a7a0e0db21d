package config

import (
	"errors"
	"fmt"
)

// ErrLoadConfig marks failures reading the file or environment; ErrInvalidConfig
// marks values that were read but cannot drive a schedule.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidLunch and ErrInvalidDays narrow ErrInvalidConfig to the lunch
	// window and the day table.
	ErrInvalidLunch = fmt.Errorf("%w: lunch", ErrInvalidConfig)
	ErrInvalidDays  = fmt.Errorf("%w: days", ErrInvalidConfig)
)
