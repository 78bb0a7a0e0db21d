// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/heatsheet/internal/adapters/ingest"
	service "github.com/okian/heatsheet/internal/app"
	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/schedule"
	"github.com/okian/heatsheet/internal/domain/types"
	"github.com/okian/heatsheet/internal/validate"
)

// DefaultMaxUploadBytes caps a roster upload when the server is built
// without an explicit limit.
const DefaultMaxUploadBytes int64 = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// LoadRoster replaces the heat list with the spreadsheet read from r.
	LoadRoster(ctx context.Context, name string, r io.Reader) (*model.Batch, error)

	// Read operations expose the projected schedule.
	Projection(ctx context.Context, f model.Filter) []model.Projected
	Board(ctx context.Context, day string, now clock.TimeOfDay) schedule.Board
	FilterOptions() model.FilterOptions

	// Operator input.
	SetActualEnd(ctx context.Context, key model.HeatKey, text string) (model.EndOverride, error)
	ClearActualEnds(ctx context.Context) (int, error)

	ScheduleConfig() types.ScheduleConfig
	UpdateScheduleConfig(ctx context.Context, c types.ScheduleConfig) error

	// Now anchors times of day to a calendar date.
	Now() time.Time
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rosterHandler   *RosterHandler
	scheduleHandler *ScheduleHandler
	heatsHandler    *HeatsHandler
	configHandler   *ConfigHandler
}

// NewServer creates a new API server with all handlers. maxUpload bounds
// the roster body; zero or less means DefaultMaxUploadBytes.
func NewServer(deps Dependencies, maxUpload int64) *Server {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		rosterHandler:   NewRosterHandler(deps, maxUpload),
		scheduleHandler: NewScheduleHandler(deps),
		heatsHandler:    NewHeatsHandler(deps),
		configHandler:   NewConfigHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/roster", MetricsMiddleware(s.rosterHandler.HandlePostRoster, "roster"))
	mux.HandleFunc("/schedule/options", MetricsMiddleware(s.scheduleHandler.HandleGetOptions, "schedule_options"))
	mux.HandleFunc("/schedule/board", MetricsMiddleware(s.scheduleHandler.HandleGetBoard, "schedule_board"))
	mux.HandleFunc("/schedule", MetricsMiddleware(s.scheduleHandler.HandleGetSchedule, "schedule"))
	mux.HandleFunc("/heats/", MetricsMiddleware(s.heatsHandler.HandleActualEnd, "actual_end"))
	mux.HandleFunc("/actual-ends", MetricsMiddleware(s.heatsHandler.HandleClearAll, "actual_ends"))
	mux.HandleFunc("/config/schedule", MetricsMiddleware(s.configHandler.HandleScheduleConfig, "config_schedule"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// methodNotAllowed answers 405 and lists the methods the route accepts.
func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an upstream error onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, validate.ErrValidation),
		errors.Is(err, clock.ErrInvalidTime),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, ingest.ErrNoHeaderRow),
		errors.Is(err, ingest.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeJSON reads a single JSON document into dst and runs its
// validation tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	if dec.More() {
		return errors.Join(ErrBadRequest, errors.New("unexpected trailing data"))
	}
	return validate.Struct(dst)
}
