package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/schedule"
	"github.com/okian/heatsheet/internal/domain/types"
)

// ScheduleDependencies defines the read side of the projected schedule.
type ScheduleDependencies interface {
	Projection(ctx context.Context, f model.Filter) []model.Projected
	Board(ctx context.Context, day string, now clock.TimeOfDay) schedule.Board
	FilterOptions() model.FilterOptions
	Now() time.Time
}

// ScheduleHandler serves projections, filter options and the board.
type ScheduleHandler struct {
	deps ScheduleDependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps ScheduleDependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

type scheduleResponse struct {
	Date  string            `json:"date"`
	Heats []types.HeatEntry `json:"heats"`
}

// HandleGetSchedule handles GET /schedule requests. Query parameters day,
// age_group, gender, event_name and participant narrow the result; the
// projection itself always runs over the whole schedule.
func (h *ScheduleHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	f := model.Filter{
		Day:         q.Get("day"),
		AgeGroup:    q.Get("age_group"),
		Gender:      q.Get("gender"),
		EventName:   q.Get("event_name"),
		Participant: q.Get("participant"),
	}

	date := h.deps.Now()
	projected := h.deps.Projection(r.Context(), f)
	out := scheduleResponse{
		Date:  date.Format(time.DateOnly),
		Heats: make([]types.HeatEntry, 0, len(projected)),
	}
	for _, p := range projected {
		out.Heats = append(out.Heats, types.NewHeatEntry(p, date))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetOptions handles GET /schedule/options requests.
func (h *ScheduleHandler) HandleGetOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.FilterOptions())
}

// HandleGetBoard handles GET /schedule/board?now=HH:MM&day= requests. now
// defaults to the current wall clock.
func (h *ScheduleHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_board"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	date := h.deps.Now()
	now := clock.FromTime(date)
	if raw := r.URL.Query().Get("now"); raw != "" {
		t, err := clock.ParseTimeOfDay(raw)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		now = t
	}

	b := h.deps.Board(r.Context(), r.URL.Query().Get("day"), now)
	out := types.Board{Now: now}
	if b.Current != nil {
		e := types.NewHeatEntry(*b.Current, date)
		out.Current = &e
	}
	if b.Inspection != nil {
		e := types.NewHeatEntry(*b.Inspection, date)
		out.Inspection = &e
	}
	writeJSON(w, http.StatusOK, out)
}
