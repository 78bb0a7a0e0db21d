package schedule

import (
	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
)

// DefaultInspectionLead is how many heats ahead of the running one are
// called to the marshalling area.
const DefaultInspectionLead = 2

// Board names the heat in the water and the heat being marshalled.
type Board struct {
	Current    *model.Projected
	Inspection *model.Projected
}

// CurrentBoard inspects one day of a projection at now. When a heat is
// running, Inspection is the heat lead positions after it; otherwise
// Current is nil and Inspection is the next heat to start. An empty day
// selects the first day in the sequence.
func CurrentBoard(projected []model.Projected, day string, now clock.TimeOfDay, lead int) Board {
	if lead < 1 {
		lead = DefaultInspectionLead
	}
	seq := dayOf(projected, day)

	for i := range seq {
		if seq[i].Running(now) {
			b := Board{Current: &seq[i]}
			if j := i + lead; j < len(seq) {
				b.Inspection = &seq[j]
			}
			return b
		}
	}
	for i := range seq {
		if seq[i].ScheduledStart >= now {
			return Board{Inspection: &seq[i]}
		}
	}
	return Board{}
}

func dayOf(projected []model.Projected, day string) []model.Projected {
	if len(projected) == 0 {
		return nil
	}
	if day == "" {
		day = projected[0].DayKey
	}
	out := make([]model.Projected, 0, len(projected))
	for _, p := range projected {
		if p.DayKey == day {
			out = append(out, p)
		}
	}
	return out
}
