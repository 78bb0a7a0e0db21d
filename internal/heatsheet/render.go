package heatsheet

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/types"
)

// WriteTable prints one aligned table per competition day.
func WriteTable(w io.Writer, projected []model.Projected) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	day := "\x00"
	for _, p := range projected {
		if p.DayKey != day {
			if day != "\x00" {
				fmt.Fprintln(tw)
			}
			day = p.DayKey
			fmt.Fprintf(tw, "== %s ==\n", dayTitle(p))
			fmt.Fprintln(tw, "EVENT\tHEAT\tAGE\tGENDER\tNAME\tEST\tSTART\tEND\tACTUAL")
		}
		actual := "-"
		if p.ActualEnd.IsManual() {
			actual = p.ActualEnd.At().String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Event, p.Descriptor(), p.AgeGroup, p.Gender, p.EventName,
			clock.FormatDuration(p.EstimatedSeconds),
			p.ScheduledStart, p.ScheduledEnd, actual)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// WriteJSON prints the heats in the HTTP read shape, anchored to date.
func WriteJSON(w io.Writer, projected []model.Projected, date time.Time) error {
	out := make([]types.HeatEntry, 0, len(projected))
	for _, p := range projected {
		out = append(out, types.NewHeatEntry(p, date))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func dayTitle(p model.Projected) string {
	switch {
	case p.DayLabel != "":
		return p.DayLabel
	case p.DayKey != "":
		return p.DayKey
	default:
		return "unscheduled"
	}
}
