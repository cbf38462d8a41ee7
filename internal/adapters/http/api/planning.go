package api

import (
	"net/http"

	"github.com/okian/gridiron/internal/domain/forecast"
)

// PlanningHandler serves the budget, forecast, replacement and what-if routes.
type PlanningHandler struct {
	deps PlanningDependencies
}

// NewPlanningHandler creates a new planning handler.
func NewPlanningHandler(deps PlanningDependencies) *PlanningHandler {
	return &PlanningHandler{deps: deps}
}

// HandleBudget handles GET /budget.
func (h *PlanningHandler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.BudgetReport(r.Context())
	if err != nil {
		writeServiceError(w, "api.budget", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleForecast handles GET /forecast?years=N; years defaults to 3.
func (h *PlanningHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "api.forecast"
	years, err := queryInt(r, "years", forecast.MaxYears)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.Forecast(r.Context(), years)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"years": out})
}

// HandleReplacement handles GET /replacement?group=G.
func (h *PlanningHandler) HandleReplacement(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.SuggestReplacement(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		writeServiceError(w, "api.replacement", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleWhatIf handles POST /what-if, the recruit before/after report.
func (h *PlanningHandler) HandleWhatIf(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.BeforeAfter(r.Context())
	if err != nil {
		writeServiceError(w, "api.what_if", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
