package heatsheet

import "errors"

// Sentinel kinds for heat sheet errors.
var (
	ErrNoRoster      = errors.New("no roster file given")
	ErrBadActualEnd  = errors.New("malformed actual end, want event/heat=HH:MM")
	ErrUnknownFormat = errors.New("unknown output format")
)
