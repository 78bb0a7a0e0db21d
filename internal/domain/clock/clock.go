// Package clock implements wall-clock-of-day arithmetic for the meet schedule.
//
// All values are offsets from local midnight of the competition day; there is
// no timezone handling. A TimeOfDay may run past 24h when a session overruns.
package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed as the duration since midnight.
type TimeOfDay time.Duration

// Of builds a TimeOfDay from hour, minute and second components.
func Of(h, m, s int) TimeOfDay {
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

// FromTime drops the date part of t.
func FromTime(t time.Time) TimeOfDay {
	return Of(t.Hour(), t.Minute(), t.Second()) + TimeOfDay(time.Duration(t.Nanosecond()))
}

// ParseTimeOfDay parses "H:MM", "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	limits := []int{23, 59, 59}
	vals := make([]int, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 || (i > 0 && len(p) != 2) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		vals[i] = n
	}
	return Of(vals[0], vals[1], vals[2]), nil
}

// MustParse is ParseTimeOfDay for constants; it panics on malformed input.
func MustParse(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Duration returns t as a time.Duration since midnight.
func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) }

// Add returns t+d.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay { return t + TimeOfDay(d) }

// Sub returns t-u.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration { return time.Duration(t - u) }

// On anchors t to the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t))
}

// String formats t as HH:MM:SS, truncating sub-second precision.
func (t TimeOfDay) String() string {
	secs := int64(time.Duration(t) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// HM formats t as HH:MM.
func (t TimeOfDay) HM() string {
	return t.String()[:len(t.String())-3]
}

// MarshalText encodes t as HH:MM:SS.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts anything ParseTimeOfDay does.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Seconds converts fractional seconds into a duration rounded to the
// millisecond. Negative and NaN inputs yield zero.
func Seconds(s float64) time.Duration {
	if math.IsNaN(s) || s <= 0 {
		return 0
	}
	if math.IsInf(s, 1) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}
