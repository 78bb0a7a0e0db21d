package heatsheet

import (
	"fmt"
	"os"

	"github.com/okian/heatsheet/pkg/logger"
)

// SetupLogging sends log lines to stderr so stdout carries only the sheet.
func SetupLogging(verbose bool) error {
	if err := logger.InitWith(os.Stderr, "text"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the heat sheet tool.
func ShowHelp() {
	os.Stdout.WriteString(`Heat Sheet
==========

Prints the projected start and end time of every heat in a start list.

Usage:
  go run ./cmd/heatsheet -roster meet.xlsx [options]

Options:
  -roster string
        Start list file: .csv, .xlsx or .xlsm (required)
  -config string
        YAML config file with turnover, lunch and day rules (default $HEATSHEET_CONFIG)
  -end event/heat=HH:MM
        Recorded end of a heat; repeatable
  -day, -age-group, -gender, -event, -participant string
        Print only matching heats; times are still projected over the whole meet
  -format string
        table or json (default "table")
  -verbose
        Enable debug logging on stderr
  -help
        Show this help message

Examples:
  # Whole meet with the built-in rules
  go run ./cmd/heatsheet -roster meet.xlsx

  # Day 2 after heat 3 of event 30 ended at 09:12
  go run ./cmd/heatsheet -roster meet.xlsx -day d2 -end 30/3=09:12
`)
}
