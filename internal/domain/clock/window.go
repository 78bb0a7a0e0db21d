package clock

import "time"

// Window is a daily blackout interval [Start, End) during which no racing
// time is scheduled. A window whose End is not after Start is inert.
type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Valid reports whether the window has positive width.
func (w Window) Valid() bool { return w.Start < w.End }

// Width is the length of the window, zero when inert.
func (w Window) Width() time.Duration {
	if !w.Valid() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t TimeOfDay) bool {
	return w.Valid() && t >= w.Start && t < w.End
}

// Clamp moves t out of the window to its End.
func (w Window) Clamp(t TimeOfDay) TimeOfDay {
	if w.Contains(t) {
		return w.End
	}
	return t
}

// AddSkipping adds d to start, excising the window from the elapsed time:
// whatever part of d would fall after Start resumes at End.
func (w Window) AddSkipping(start TimeOfDay, d time.Duration) TimeOfDay {
	if !w.Valid() {
		return start.Add(d)
	}
	if w.Contains(start) {
		return w.End.Add(d)
	}
	end := start.Add(d)
	if start < w.Start && end > w.Start {
		return w.End.Add(end.Sub(w.Start))
	}
	return end
}

// Advance returns the next start cursor after a heat ending at end.
func (w Window) Advance(end TimeOfDay, turnover time.Duration) TimeOfDay {
	return w.Clamp(end.Add(turnover))
}
