package heatsheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/schedule"
)

// ParseActualEnds reads "event/heat=HH:MM" entries. Times inside lunch are
// moved to its end, as the server does. A later entry for the same heat
// replaces an earlier one.
func ParseActualEnds(entries []string, lunch clock.Window) (schedule.Overrides, error) {
	out := make(schedule.Overrides, len(entries))
	for _, e := range entries {
		key, at, err := parseActualEnd(e)
		if err != nil {
			return nil, err
		}
		out[key] = lunch.Clamp(at)
	}
	return out, nil
}

func parseActualEnd(entry string) (model.HeatKey, clock.TimeOfDay, error) {
	heat, at, ok := strings.Cut(strings.TrimSpace(entry), "=")
	if !ok {
		return model.HeatKey{}, 0, fmt.Errorf("%w: %q", ErrBadActualEnd, entry)
	}
	ev, idx, ok := strings.Cut(heat, "/")
	if !ok {
		return model.HeatKey{}, 0, fmt.Errorf("%w: %q", ErrBadActualEnd, entry)
	}
	event, err := strconv.Atoi(strings.TrimSpace(ev))
	if err != nil || event < 1 {
		return model.HeatKey{}, 0, fmt.Errorf("%w: %q", ErrBadActualEnd, entry)
	}
	index, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil || index < 1 {
		return model.HeatKey{}, 0, fmt.Errorf("%w: %q", ErrBadActualEnd, entry)
	}
	t, err := clock.ParseTimeOfDay(at)
	if err != nil {
		return model.HeatKey{}, 0, fmt.Errorf("%w: %w", ErrBadActualEnd, err)
	}
	return model.HeatKey{Event: event, Index: index}, t, nil
}
