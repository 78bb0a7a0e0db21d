package model

import "strings"

// Filter narrows a projection for display. Empty fields match everything.
type Filter struct {
	Day         string `json:"day"`
	AgeGroup    string `json:"age_group"`
	Gender      string `json:"gender"`
	EventName   string `json:"event_name"`
	Participant string `json:"participant"` // case-insensitive substring
}

// IsZero reports whether the filter matches every heat.
func (f Filter) IsZero() bool { return f == Filter{} }

// Match reports whether h passes every set criterion.
func (f Filter) Match(h Heat) bool {
	switch {
	case f.Day != "" && h.DayKey != f.Day:
		return false
	case f.AgeGroup != "" && h.AgeGroup != f.AgeGroup:
		return false
	case f.Gender != "" && h.Gender != f.Gender:
		return false
	case f.EventName != "" && h.EventName != f.EventName:
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Participant)); q != "" {
		for _, p := range h.Participants {
			if strings.Contains(strings.ToLower(p), q) {
				return true
			}
		}
		return false
	}
	return true
}

// FilterOptions lists the distinct values available to each filter.
type FilterOptions struct {
	Days         []DayOption `json:"days"`
	AgeGroups    []string    `json:"age_groups"`
	Genders      []string    `json:"genders"`
	EventNames   []string    `json:"event_names"`
	Participants []string    `json:"participants"`
}

// DayOption pairs a day key with its display label.
type DayOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
