// Package heatsheet prints a projected heat sheet from a start list file
// without running the server.
package heatsheet

import (
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/schedule"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds one heat sheet run.
type Config struct {
	Roster    string          // start list file (.csv, .xlsx, .xlsm)
	Schedule  schedule.Config // timing rules
	Fallback  float64         // heat length in seconds when nothing is known
	ActualEnd []string        // "event/heat=HH:MM" entries
	Filter    model.Filter    // narrows what is printed
	Format    string          // table or json
	Verbose   bool            // debug logging
}
