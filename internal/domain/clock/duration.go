package clock

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var resultPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\.(\d{1,2}))?$`)

// ParseDuration parses a race result of the form MM:SS or MM:SS.cc (one or
// two fraction digits) into seconds. Any other input, including the empty
// string, reports ok=false.
func ParseDuration(text string) (seconds float64, ok bool) {
	m := resultPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	minutes, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	if secs > 59 {
		return 0, false
	}
	centis := 0
	if m[3] != "" {
		frac := m[3]
		if len(frac) == 1 {
			frac += "0"
		}
		centis, _ = strconv.Atoi(frac)
	}
	return float64(minutes*60+secs) + float64(centis)/100, true
}

// FormatDuration renders seconds as MM:SS, or MM:SS.cc when there is a
// fractional part. Negative and NaN values render as "".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return ""
	}
	centis := int64(math.Round(seconds * 100))
	mm := centis / 6000
	ss := (centis / 100) % 60
	cc := centis % 100
	if cc == 0 {
		return fmt.Sprintf("%02d:%02d", mm, ss)
	}
	return fmt.Sprintf("%02d:%02d.%02d", mm, ss, cc)
}
