package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Column identifies a start-list field.
type Column int

// Start-list columns.
const (
	ColEvent Column = iota
	ColHeat
	ColAgeGroup
	ColGender
	ColEventName
	ColName
	ColTeam
	ColResult
	columnCount
)

const (
	headerScanRows = 30
	headerMinHits  = 5
)

// headerAliases maps folded header text to columns. The Chinese names are the
// federation's export format; the English ones are accepted for hand-made sheets.
var headerAliases = map[string]Column{
	"項次": ColEvent, "event": ColEvent, "event_no": ColEvent,
	"組次": ColHeat, "heat": ColHeat,
	"年齡組": ColAgeGroup, "age_group": ColAgeGroup, "age": ColAgeGroup,
	"性別": ColGender, "gender": ColGender,
	"比賽項目": ColEventName, "event_name": ColEventName,
	"姓名": ColName, "name": ColName, "participant": ColName,
	"單位": ColTeam, "team": ColTeam,
	"報名成績": ColResult, "result": ColResult, "entry_time": ColResult,
}

// foldHeader normalizes a header cell: full-width forms are narrowed,
// compatibility characters composed, whitespace trimmed and case folded.
func foldHeader(s string) string {
	s = width.Narrow.String(s)
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// layout maps columns to cell indexes; -1 marks an absent column.
type layout [columnCount]int

func (l layout) cell(row []string, c Column) string {
	i := l[c]
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func layoutOf(row []string) (layout, int) {
	var l layout
	for i := range l {
		l[i] = -1
	}
	hits := 0
	for i, cell := range row {
		c, ok := headerAliases[foldHeader(cell)]
		if !ok || l[c] >= 0 {
			continue
		}
		l[c] = i
		hits++
	}
	return l, hits
}

// HeaderRow returns the index of the first row within the scan limit that
// names at least five start-list columns, or -1.
func HeaderRow(grid [][]string) int {
	limit := min(len(grid), headerScanRows)
	for i := 0; i < limit; i++ {
		if _, hits := layoutOf(grid[i]); hits >= headerMinHits {
			return i
		}
	}
	return -1
}
