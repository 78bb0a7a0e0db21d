package ingest

import (
	"strconv"
	"strings"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/days"
	"github.com/okian/heatsheet/internal/domain/model"
)

// Records converts a grid into flat start-list records, using the detected
// header row. Blank rows are skipped.
func Records(grid [][]string) ([]model.Record, error) {
	hi := HeaderRow(grid)
	if hi < 0 {
		return nil, ErrNoHeaderRow
	}
	l, _ := layoutOf(grid[hi])

	var out []model.Record
	for _, row := range grid[hi+1:] {
		if blank(row) {
			continue
		}
		out = append(out, model.Record{
			Event:       l.cell(row, ColEvent),
			Heat:        l.cell(row, ColHeat),
			AgeGroup:    l.cell(row, ColAgeGroup),
			Gender:      l.cell(row, ColGender),
			EventName:   l.cell(row, ColEventName),
			Participant: l.cell(row, ColName),
			Team:        l.cell(row, ColTeam),
			Result:      l.cell(row, ColResult),
		})
	}
	return out, nil
}

// BuildHeats groups records into heats keyed by (event, index, count),
// stamps their day from table and returns them in race order. Malformed
// numbers read as zero and malformed results as absent.
func BuildHeats(records []model.Record, table days.Table) []model.Heat {
	index := make(map[model.HeatID]int)
	var heats []model.Heat

	for _, r := range records {
		event := atoi(r.Event)
		idx, count := ParseDescriptor(r.Heat)
		id := model.HeatID{Event: event, Index: idx, Count: count}

		pos, ok := index[id]
		if !ok {
			key := table.KeyOf(event)
			heats = append(heats, model.Heat{
				Event:     event,
				Index:     idx,
				Count:     count,
				AgeGroup:  r.AgeGroup,
				Gender:    r.Gender,
				EventName: r.EventName,
				DayKey:    key,
				DayLabel:  table.LabelOf(key),
			})
			pos = len(heats) - 1
			index[id] = pos
		}

		h := &heats[pos]
		if r.Participant != "" {
			h.Participants = append(h.Participants, r.Participant)
		}
		if secs, ok := clock.ParseDuration(r.Result); ok {
			h.RecordedDurations = append(h.RecordedDurations, secs)
		}
	}

	model.Sort(heats)
	return heats
}

// ParseDescriptor splits an "index/count" heat descriptor. A missing slash
// leaves count at zero.
func ParseDescriptor(s string) (index, count int) {
	num, total, _ := strings.Cut(strings.TrimSpace(s), "/")
	return atoi(num), atoi(total)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
