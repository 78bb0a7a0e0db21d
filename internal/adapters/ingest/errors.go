package ingest

import "errors"

// Sentinel kinds for ingestion errors. Either rejects the whole batch.
var (
	ErrNoHeaderRow       = errors.New("no header row found")
	ErrUnsupportedFormat = errors.New("unsupported roster format")
)
