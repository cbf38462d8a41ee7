package api

import (
	"net/http"
	"strings"
)

// valuationRequest is the body of POST /valuations and POST /valuations/jobs.
type valuationRequest struct {
	RequestID string `json:"request_id,omitempty"`
	PolicyID  string `json:"policy_id,omitempty"`
	PoolID    string `json:"pool_id,omitempty"`
	Persist   bool   `json:"persist,omitempty"`
}

// ValuationHandler serves synchronous valuations and asynchronous recomputes.
type ValuationHandler struct {
	deps ValuationDependencies
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(deps ValuationDependencies) *ValuationHandler {
	return &ValuationHandler{deps: deps}
}

// HandleCompute handles POST /valuations.
func (h *ValuationHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute_valuation"
	var req valuationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.ComputeValuation(r.Context(), req.PolicyID, req.PoolID, req.Persist)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleList handles GET /valuations?policy_id=&pool_id=.
func (h *ValuationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_valuations"
	q := r.URL.Query()
	rows, err := h.deps.Valuations(r.Context(), q.Get("policy_id"), q.Get("pool_id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "count": len(rows)})
}

// HandleSubmitJob handles POST /valuations/jobs. A repeated request_id is acknowledged
// with the original job and 200; a new job is accepted with 202.
func (h *ValuationHandler) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_recompute"
	var req valuationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.RequestID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errMissing("request_id")))
		return
	}
	st, err := h.deps.SubmitRecompute(r.Context(), req.RequestID, req.PolicyID, req.PoolID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusAccepted
	if st.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, st)
}

// HandleGetJob handles GET /valuations/jobs/{id}.
func (h *ValuationHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	st, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
