package schedule

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/heatsheet/internal/domain/days"
	"github.com/okian/heatsheet/internal/domain/model"
)

// Options lists the distinct filter values present in heats. Days follow the
// table order; participant names are collated for tag (Traditional Chinese
// when tag is undefined).
func Options(heats []model.Heat, table days.Table, tag language.Tag) model.FilterOptions {
	if tag == language.Und {
		tag = language.TraditionalChinese
	}

	present := make(map[string]struct{})
	ages := newSet()
	genders := newSet()
	events := newSet()
	players := newSet()
	for _, h := range heats {
		present[h.DayKey] = struct{}{}
		ages.add(h.AgeGroup)
		genders.add(h.Gender)
		events.add(h.EventName)
		for _, p := range h.Participants {
			players.add(p)
		}
	}

	opts := model.FilterOptions{
		Days:         []model.DayOption{},
		AgeGroups:    ages.sorted(),
		Genders:      genders.sorted(),
		EventNames:   events.sorted(),
		Participants: players.list(),
	}
	for _, r := range table.Rules() {
		if _, ok := present[r.Key]; ok {
			opts.Days = append(opts.Days, model.DayOption{Key: r.Key, Label: r.Label})
		}
	}
	collate.New(tag).SortStrings(opts.Participants)
	return opts
}

type set map[string]struct{}

func newSet() set { return set{} }

func (s set) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s set) list() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

func (s set) sorted() []string {
	out := s.list()
	sort.Strings(out)
	return out
}
