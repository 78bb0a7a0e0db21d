package clock

import "errors"

// Sentinel kinds for clock parsing errors.
var (
	ErrInvalidTime = errors.New("invalid time of day")
)
