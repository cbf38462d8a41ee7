// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/budget"
	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/scenario"
	"github.com/okian/gridiron/internal/domain/summary"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ValuationDependencies
	ScenarioDependencies
	PlanningDependencies
	StatsProvider
}

// ValuationDependencies back the valuation and recompute routes.
type ValuationDependencies interface {
	ComputeValuation(ctx context.Context, policyID, poolID string, persist bool) (scenario.Snapshot, error)
	Valuations(ctx context.Context, policyID, poolID string) ([]model.SnapshotRecord, error)
	SubmitRecompute(ctx context.Context, requestID, policyID, poolID string) (service.JobStatus, error)
	Job(ctx context.Context, id string) (service.JobStatus, error)
}

// ScenarioDependencies back the scenario routes.
type ScenarioDependencies interface {
	RunScenario(ctx context.Context, req service.ScenarioRequest) (scenario.Result, error)
	SaveScenario(ctx context.Context, name, policyID, poolID string, mutations []byte) (model.ScenarioRecord, error)
	RunSavedScenario(ctx context.Context, id string) (scenario.Result, error)
}

// PlanningDependencies back the budget, forecast, replacement and what-if routes.
type PlanningDependencies interface {
	BudgetReport(ctx context.Context) (budget.Report, error)
	Forecast(ctx context.Context, years int) ([]forecast.Year, error)
	SuggestReplacement(ctx context.Context, group string) (model.RosterPlayer, error)
	BeforeAfter(ctx context.Context) (summary.State, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	valuationHandler *ValuationHandler
	scenarioHandler  *ScenarioHandler
	planningHandler  *PlanningHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		valuationHandler: NewValuationHandler(deps),
		scenarioHandler:  NewScenarioHandler(deps),
		planningHandler:  NewPlanningHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /valuations", MetricsMiddleware(s.valuationHandler.HandleCompute, "valuations"))
	mux.HandleFunc("GET /valuations", MetricsMiddleware(s.valuationHandler.HandleList, "valuations"))
	mux.HandleFunc("POST /valuations/jobs", MetricsMiddleware(s.valuationHandler.HandleSubmitJob, "valuation_jobs"))
	mux.HandleFunc("GET /valuations/jobs/{id}", MetricsMiddleware(s.valuationHandler.HandleGetJob, "valuation_jobs"))

	mux.HandleFunc("POST /scenarios", MetricsMiddleware(s.scenarioHandler.HandleSave, "scenarios"))
	mux.HandleFunc("POST /scenarios/preview", MetricsMiddleware(s.scenarioHandler.HandlePreview, "scenarios_preview"))
	mux.HandleFunc("POST /scenarios/{id}/run", MetricsMiddleware(s.scenarioHandler.HandleRunSaved, "scenarios_run"))

	mux.HandleFunc("GET /budget", MetricsMiddleware(s.planningHandler.HandleBudget, "budget"))
	mux.HandleFunc("GET /forecast", MetricsMiddleware(s.planningHandler.HandleForecast, "forecast"))
	mux.HandleFunc("GET /replacement", MetricsMiddleware(s.planningHandler.HandleReplacement, "replacement"))
	mux.HandleFunc("POST /what-if", MetricsMiddleware(s.planningHandler.HandleWhatIf, "what_if"))
}
