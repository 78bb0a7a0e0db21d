package api

import (
	"maps"
	"net/http"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
)

// StatsProvider reports the service's counters.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsDependencies adds the server clock so operators can spot a host whose
// time of day disagrees with the pool deck.
type StatsDependencies interface {
	StatsProvider
	Now() time.Time
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleStats merges the service counters with the server's date and time
// of day.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	now := h.deps.Now()
	out := maps.Clone(h.deps.GetStats())
	if out == nil {
		out = map[string]interface{}{}
	}
	out["date"] = now.Format(time.DateOnly)
	out["now"] = clock.FromTime(now).String()
	writeJSON(w, http.StatusOK, out)
}
