package days

import "errors"

// Sentinel kinds for day table errors.
var (
	ErrInvalidTable = errors.New("invalid day table")
)
