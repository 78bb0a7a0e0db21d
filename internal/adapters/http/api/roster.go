package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/heatsheet/internal/domain/model"
)

// RosterDependencies defines the interface for replacing the heat list.
type RosterDependencies interface {
	LoadRoster(ctx context.Context, name string, r io.Reader) (*model.Batch, error)
}

// RosterHandler handles start list uploads.
type RosterHandler struct {
	deps     RosterDependencies
	maxBytes int64
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies, maxBytes int64) *RosterHandler {
	return &RosterHandler{deps: deps, maxBytes: maxBytes}
}

type rosterResponse struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  int       `json:"records"`
	Heats    int       `json:"heats"`
}

// HandlePostRoster handles POST /roster?name=file.xlsx requests. The body
// is the raw file; its format follows the extension of name.
func (h *RosterHandler) HandlePostRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_roster"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	batch, err := h.deps.LoadRoster(r.Context(), name, bytes.NewReader(body))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		ID:       batch.ID.String(),
		Source:   batch.Source,
		LoadedAt: batch.LoadedAt,
		Records:  batch.Records,
		Heats:    len(batch.Heats),
	})
}
