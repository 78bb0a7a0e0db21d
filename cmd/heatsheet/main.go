package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/heatsheet/internal/config"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/heatsheet"
)

const defaultTimeout = time.Minute

// endFlags collects repeated -end values.
type endFlags []string

func (e *endFlags) String() string { return strings.Join(*e, ",") }

func (e *endFlags) Set(v string) error {
	*e = append(*e, v)
	return nil
}

func main() {
	var ends endFlags
	var (
		roster      = flag.String("roster", "", "Start list file (.csv, .xlsx, .xlsm)")
		configFile  = flag.String("config", "", "YAML config file (default $HEATSHEET_CONFIG)")
		day         = flag.String("day", "", "Print only this day key")
		ageGroup    = flag.String("age-group", "", "Print only this age group")
		gender      = flag.String("gender", "", "Print only this gender")
		eventName   = flag.String("event", "", "Print only this event name")
		participant = flag.String("participant", "", "Print only heats with a matching participant")
		format      = flag.String("format", heatsheet.FormatTable, "Output format: table or json")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Var(&ends, "end", "Recorded end of a heat as event/heat=HH:MM (repeatable)")
	flag.Parse()

	if *help {
		heatsheet.ShowHelp()
		return
	}

	if err := heatsheet.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if *configFile != "" {
		_ = os.Setenv(config.EnvConfigFile, *configFile)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	sched, err := cfg.Schedule()
	if err != nil {
		os.Stderr.WriteString("Invalid schedule config: " + err.Error() + "\n")
		os.Exit(1)
	}

	run := &heatsheet.Config{
		Roster:    *roster,
		Schedule:  sched,
		Fallback:  cfg.FallbackSeconds(),
		ActualEnd: ends,
		Filter: model.Filter{
			Day:         *day,
			AgeGroup:    *ageGroup,
			Gender:      *gender,
			EventName:   *eventName,
			Participant: *participant,
		},
		Format:  *format,
		Verbose: *verbose,
	}
	if err := heatsheet.Run(ctx, run, os.Stdout); err != nil {
		os.Stderr.WriteString("Heat sheet failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
