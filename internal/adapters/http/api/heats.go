package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
)

// HeatsDependencies defines the operator input operations.
type HeatsDependencies interface {
	SetActualEnd(ctx context.Context, key model.HeatKey, text string) (model.EndOverride, error)
	ClearActualEnds(ctx context.Context) (int, error)
}

// HeatsHandler handles actual end time edits.
type HeatsHandler struct {
	deps HeatsDependencies
}

// NewHeatsHandler creates a new heats handler.
func NewHeatsHandler(deps HeatsDependencies) *HeatsHandler {
	return &HeatsHandler{deps: deps}
}

type actualEndRequest struct {
	Time string `json:"time" validate:"required,clock"`
}

type actualEndResponse struct {
	Event     int              `json:"event"`
	Heat      int              `json:"heat"`
	ActualEnd *clock.TimeOfDay `json:"actual_end"`
}

type clearResponse struct {
	Cleared int `json:"cleared"`
}

// HandleActualEnd handles PUT and DELETE /heats/{event}/{heat}/actual-end.
func (h *HeatsHandler) HandleActualEnd(w http.ResponseWriter, r *http.Request) {
	const op = "api.actual_end"
	key, ok := parseHeatPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var text string
	switch r.Method {
	case http.MethodPut:
		var req actualEndRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		text = req.Time
	case http.MethodDelete:
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
		return
	}

	end, err := h.deps.SetActualEnd(r.Context(), key, text)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, actualEndResponse{Event: key.Event, Heat: key.Index, ActualEnd: end.Ptr()})
}

// HandleClearAll handles DELETE /actual-ends requests.
func (h *HeatsHandler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_actual_ends"
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	n, err := h.deps.ClearActualEnds(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Cleared: n})
}

// parseHeatPath extracts the key from /heats/{event}/{heat}/actual-end.
// Zero is accepted for either number because ingestion stores an unreadable
// event or heat number as zero.
func parseHeatPath(path string) (model.HeatKey, bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/heats/"), "/")
	if len(parts) != 3 || parts[2] != "actual-end" {
		return model.HeatKey{}, false
	}
	event, err := strconv.Atoi(parts[0])
	if err != nil || event < 0 {
		return model.HeatKey{}, false
	}
	heat, err := strconv.Atoi(parts[1])
	if err != nil || heat < 0 {
		return model.HeatKey{}, false
	}
	return model.HeatKey{Event: event, Index: heat}, true
}
