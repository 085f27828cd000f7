package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/meloday/internal/curate"
	"github.com/desertthunder/meloday/internal/models"
	"github.com/desertthunder/meloday/internal/shared"
)

// RunLister reads recorded curation runs for the history endpoints.
type RunLister interface {
	List(criteria map[string]any) ([]*models.CurationRun, error)
	Latest(period string) (*models.CurationRun, error)
}

// runResponse is the JSON shape of a recorded curation run.
type runResponse struct {
	ID          string    `json:"id"`
	Sequence    int       `json:"sequence"`
	Period      string    `json:"period"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TrackIDs    []string  `json:"track_ids"`
	TrackCount  int       `json:"track_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRunResponse(run *models.CurationRun) runResponse {
	return runResponse{
		ID:          run.ID(),
		Sequence:    run.Sequence(),
		Period:      run.Period(),
		Title:       run.Title(),
		Description: run.Description(),
		TrackIDs:    run.TrackIDs(),
		TrackCount:  run.TrackCount(),
		CreatedAt:   run.CreatedAt(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// RunsHandler serves the curation run history.
type RunsHandler struct {
	runs   RunLister
	logger *log.Logger
}

func NewRunsHandler(runs RunLister, logger *log.Logger) *RunsHandler {
	return &RunsHandler{runs: runs, logger: logger}
}

func (h *RunsHandler) Routes() []string {
	return []string{"/runs", "/runs/latest"}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/runs":
		h.list(w, r)
	case "/runs/latest":
		h.latest(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *RunsHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if period := r.URL.Query().Get("period"); period != "" {
		criteria["period"] = period
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		criteria["limit"] = limit
	}

	runs, err := h.runs.List(criteria)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	responses := make([]runResponse, len(runs))
	for i, run := range runs {
		responses[i] = newRunResponse(run)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": responses, "count": len(responses)})
}

func (h *RunsHandler) latest(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Latest(r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, shared.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to fetch latest run", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

// CurateHandler triggers the curation pipeline over HTTP.
type CurateHandler struct {
	engine *curate.Engine
	logger *log.Logger
}

func NewCurateHandler(engine *curate.Engine, logger *log.Logger) *CurateHandler {
	return &CurateHandler{engine: engine, logger: logger}
}

func (h *CurateHandler) Routes() []string {
	return []string{"/curate"}
}

func (h *CurateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	period := r.URL.Query().Get("period")
	persist := r.URL.Query().Get("persist") != "false"

	result, err := h.engine.Run(r.Context(), nil, period, persist)
	if err != nil {
		h.logger.Error("curation failed", "period", period, "error", err)
		switch {
		case errors.Is(err, shared.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, shared.ErrNothingToCurate):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	response := map[string]any{
		"period":     result.Period,
		"playlist":   result.Playlist,
		"candidates": result.Candidates,
		"resolved":   result.Resolved,
		"sequenced":  result.Sequenced,
		"elapsed_ms": result.ElapsedTime.Milliseconds(),
	}
	if result.Run != nil {
		response["run"] = newRunResponse(result.Run)
	}
	writeJSON(w, http.StatusOK, response)
}
