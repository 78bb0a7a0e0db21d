package api

import (
	"context"
	"net/http"

	"github.com/okian/heatsheet/internal/domain/types"
)

// ConfigDependencies defines access to the operator-editable timing rules.
type ConfigDependencies interface {
	ScheduleConfig() types.ScheduleConfig
	UpdateScheduleConfig(ctx context.Context, c types.ScheduleConfig) error
}

// ConfigHandler handles schedule configuration requests.
type ConfigHandler struct {
	deps ConfigDependencies
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(deps ConfigDependencies) *ConfigHandler {
	return &ConfigHandler{deps: deps}
}

// HandleScheduleConfig handles GET and PUT /config/schedule requests.
func (h *ConfigHandler) HandleScheduleConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.schedule_config"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.ScheduleConfig())
	case http.MethodPut:
		var c types.ScheduleConfig
		if err := decodeJSON(r, &c); err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.UpdateScheduleConfig(r.Context(), c); err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, h.deps.ScheduleConfig())
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
