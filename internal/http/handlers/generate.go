package handlers

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"timemirror/internal/timeline"
)

type generateRequest struct {
	Smoking     *int `json:"smoking"`
	SunExposure *int `json:"sun_exposure"`
	Stress      *int `json:"stress"`
}

// Generate triggers a run. Slider values are optional; omitted ones keep
// their current value.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	factors := a.Orch.Factors()
	if req.Smoking != nil {
		factors.Smoking = *req.Smoking
	}
	if req.SunExposure != nil {
		factors.SunExposure = *req.SunExposure
	}
	if req.Stress != nil {
		factors.Stress = *req.Stress
	}
	a.Orch.SetFactors(factors)

	runID, err := a.Orch.Trigger(r.Context())
	switch {
	case errors.Is(err, timeline.ErrNoUpload):
		a.error(w, http.StatusUnprocessableEntity, "no_upload", "upload a portrait before generating")
		return
	case errors.Is(err, timeline.ErrRunInFlight):
		a.error(w, http.StatusConflict, "run_in_flight", "a generation run is already in progress")
		return
	case err != nil:
		a.Logger.Error().Err(err).Msg("generate: trigger failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start generation")
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"run_id": runID, "status": "running"})
}

// State returns the full application-state snapshot for the page.
func (a *App) State(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Orch.Snapshot())
}
