package model

import "github.com/okian/heatsheet/internal/domain/clock"

// EndOverride records whether a heat's end is model-estimated or was
// observed by the operator. The zero value is Estimated.
type EndOverride struct {
	manual bool
	at     clock.TimeOfDay
}

// Estimated is the absence of an operator override.
func Estimated() EndOverride { return EndOverride{} }

// Manual records an operator-observed end time.
func Manual(at clock.TimeOfDay) EndOverride { return EndOverride{manual: true, at: at} }

// IsManual reports whether an operator end time is set.
func (o EndOverride) IsManual() bool { return o.manual }

// At returns the operator end time; zero when Estimated.
func (o EndOverride) At() clock.TimeOfDay { return o.at }

// Ptr returns the end time or nil, for optional JSON fields.
func (o EndOverride) Ptr() *clock.TimeOfDay {
	if !o.manual {
		return nil
	}
	at := o.at
	return &at
}
