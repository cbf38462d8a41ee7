package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/scenario"
)

// scenarioRequest is the body of POST /scenarios and POST /scenarios/preview.
type scenarioRequest struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	PolicyID  string          `json:"policy_id,omitempty"`
	PoolID    string          `json:"pool_id,omitempty"`
	Mutations json.RawMessage `json:"mutations"`
	// Pool optionally overrides the stored pool for the scenario pass.
	Pool *model.Pool `json:"pool,omitempty"`
}

func (s scenarioRequest) mutations() json.RawMessage {
	if len(s.Mutations) == 0 {
		return json.RawMessage("[]")
	}
	return s.Mutations
}

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}

// ScenarioHandler serves the what-if scenario routes.
type ScenarioHandler struct {
	deps ScenarioDependencies
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(deps ScenarioDependencies) *ScenarioHandler {
	return &ScenarioHandler{deps: deps}
}

// HandleSave handles POST /scenarios.
func (h *ScenarioHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_scenario"
	var req scenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errMissing("name")))
		return
	}
	rec, err := h.deps.SaveScenario(r.Context(), req.Name, req.PolicyID, req.PoolID, req.mutations())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandlePreview handles POST /scenarios/preview, running an unsaved scenario.
func (h *ScenarioHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview_scenario"
	var req scenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	mutations, err := scenario.DecodeMutations(req.mutations())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if req.Pool != nil && (req.Pool.PoolAmount < 0 || req.Pool.ReservedAmount < 0) {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("pool amounts must not be negative")))
		return
	}
	res, err := h.deps.RunScenario(r.Context(), service.ScenarioRequest{
		ID:        req.ID,
		Name:      req.Name,
		PolicyID:  req.PolicyID,
		PoolID:    req.PoolID,
		Mutations: mutations,
		Pool:      req.Pool,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleRunSaved handles POST /scenarios/{id}/run.
func (h *ScenarioHandler) HandleRunSaved(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_scenario"
	res, err := h.deps.RunSavedScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
