package repository

import "errors"

// Sentinel kinds for actual-end store errors.
var (
	ErrNotFound      = errors.New("actual end not found")
	ErrClosed        = errors.New("store closed")
	ErrUnknownDriver = errors.New("unknown store driver")
)
