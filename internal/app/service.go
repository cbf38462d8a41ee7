// Package service composes the record store and the valuation engines into the
// operations exposed over HTTP, MCP and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/adapters/mq/queue"
	"github.com/okian/gridiron/internal/adapters/mq/worker"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/budget"
	"github.com/okian/gridiron/internal/domain/dedupe"
	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/replacement"
	"github.com/okian/gridiron/internal/domain/scenario"
	"github.com/okian/gridiron/internal/domain/summary"
	"github.com/okian/gridiron/internal/domain/valuation"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Default identifiers used when a request names no policy or pool.
const (
	DefaultPolicyID = "default"
	DefaultPoolID   = "pool-2026"
)

// DemoPool is the pool loaded into a store the service opens itself.
var DemoPool = model.Pool{ //nolint:gochecknoglobals // demo data
	ID:             DefaultPoolID,
	Name:           "2026 revenue share",
	PoolAmount:     5_000_000,
	ReservedAmount: 250_000,
}

// Service implements the valuation, budget, forecast and what-if operations.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	ownsStore bool
	deduper   dedupe.Deduper
	jobQueue  *queue.InMemoryQueue
	pool      *worker.Pool
	jobs      *jobTable

	runner   *scenario.Runner
	alloc    *budget.Allocator
	proj     *forecast.Projector
	selector *replacement.Selector
	builder  *summary.Builder

	defaultPolicy string
	defaultPool   string
	formula       valuation.Formula
	budgetCfg     policy.BudgetConfig
	risk          policy.RiskWeights
	forecastCfg   policy.ForecastConfig
	replacement   policy.ReplacementRules
	demo          policy.DemoScenario

	workerCount int
	queueSize   int
	dedupeSize  int

	started bool
	logger  logger.Logger
}

// New constructs a Service with the demo settings unless overridden.
func New(opts ...Option) *Service {
	s := &Service{
		defaultPolicy: DefaultPolicyID,
		defaultPool:   DefaultPoolID,
		formula:       valuation.Stabilized,
		budgetCfg:     policy.DefaultBudget(),
		risk:          policy.DefaultRisk(),
		forecastCfg:   policy.DefaultForecast(),
		replacement:   policy.DefaultReplacement(),
		demo:          policy.DefaultDemo(),
		workerCount:   runtime.NumCPU(),
		queueSize:     1024,
		dedupeSize:    10_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.runner = scenario.NewRunner(scenario.WithValuationEngine(valuation.NewEngine(valuation.WithFormula(s.formula))))
	s.alloc = budget.New(s.budgetCfg)
	s.proj = forecast.New(s.forecastCfg)
	s.selector = replacement.New(s.replacement, s.forecastCfg.AsOfYear)
	s.builder = summary.New(s.alloc, s.proj, s.selector, s.demo, s.risk)
	s.jobs = newJobTable(s.dedupeSize)
	return s
}

// Start opens the store if none was given and starts the recompute workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(
			repository.WithSeed(true),
			repository.WithPolicy(policy.Default()),
			repository.WithPool(DemoPool),
		)
		s.ownsStore = true
		s.logger.Info(ctx, "using seeded in-memory store")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobQueue, worker.ProcessorFunc(s.Process))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "valuation service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains the workers and closes a store the service opened.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping valuation service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "store close", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(ctx, "valuation service stopped")
}

func (s *Service) storeOrErr() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// inputs loads everything one valuation needs before computing anything.
func (s *Service) inputs(ctx context.Context, policyID, poolID string) (model.Relations, policy.Policy, model.Pool, error) {
	st, err := s.storeOrErr()
	if err != nil {
		return model.Relations{}, policy.Policy{}, model.Pool{}, err
	}
	if policyID == "" {
		policyID = s.defaultPolicy
	}
	if poolID == "" {
		poolID = s.defaultPool
	}
	p, err := st.Policy(ctx, policyID)
	if err != nil {
		return model.Relations{}, policy.Policy{}, model.Pool{}, err
	}
	pool, err := st.Pool(ctx, poolID)
	if err != nil {
		return model.Relations{}, policy.Policy{}, model.Pool{}, err
	}
	rel, err := st.Relations(ctx)
	if err != nil {
		return model.Relations{}, policy.Policy{}, model.Pool{}, err
	}
	return rel, p, pool, nil
}

// roster loads the roster and derives each player's risk score and color.
func (s *Service) roster(ctx context.Context) ([]model.RosterPlayer, error) {
	st, err := s.storeOrErr()
	if err != nil {
		return nil, err
	}
	roster, err := st.Roster(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roster {
		s.risk.Apply(&roster[i])
	}
	return roster, nil
}

// ComputeValuation values the roster under a policy and pool. With persist set the
// rows replace the stored snapshots of that pair.
func (s *Service) ComputeValuation(ctx context.Context, policyID, poolID string, persist bool) (scenario.Snapshot, error) {
	rel, p, pool, err := s.inputs(ctx, policyID, poolID)
	if err != nil {
		return scenario.Snapshot{}, err
	}

	start := time.Now()
	snap, err := s.runner.ComputeSnapshots(rel, &p, &pool)
	if err != nil {
		return scenario.Snapshot{}, err
	}
	metrics.RecordValuation(p.ID, len(snap.Rows), float64(time.Since(start).Microseconds())/1000)

	if persist {
		st, err := s.storeOrErr()
		if err != nil {
			return scenario.Snapshot{}, err
		}
		if err := st.ReplaceSnapshots(ctx, pool.ID, p.ID, snapshotRecords(pool.ID, p.ID, snap.Rows)); err != nil {
			metrics.RecordErrorByComponent("service", "snapshot_write")
			return scenario.Snapshot{}, fmt.Errorf("persist snapshots: %w", err)
		}
		s.logger.Info(ctx, "valuation snapshots replaced",
			logger.String("pool_id", pool.ID),
			logger.String("policy_id", p.ID),
			logger.Int("rows", len(snap.Rows)),
		)
	}
	return snap, nil
}

// Valuations returns the persisted snapshot rows of a policy and pool.
func (s *Service) Valuations(ctx context.Context, policyID, poolID string) ([]model.SnapshotRecord, error) {
	st, err := s.storeOrErr()
	if err != nil {
		return nil, err
	}
	if policyID == "" {
		policyID = s.defaultPolicy
	}
	if poolID == "" {
		poolID = s.defaultPool
	}
	return st.Snapshots(ctx, poolID, policyID)
}

func snapshotRecords(poolID, policyID string, rows []valuation.Result) []model.SnapshotRecord {
	out := make([]model.SnapshotRecord, len(rows))
	for i, r := range rows {
		out[i] = model.SnapshotRecord{
			PoolID:      poolID,
			PolicyID:    policyID,
			PlayerID:    r.PlayerID,
			TotalScore:  r.TotalScore,
			SharePct:    r.SharePct,
			DollarsLow:  r.DollarsLow,
			DollarsMid:  r.DollarsMid,
			DollarsHigh: r.DollarsHigh,
			Confidence:  r.Confidence,
		}
	}
	return out
}

// ScenarioRequest is an ad-hoc what-if run.
type ScenarioRequest struct {
	ID        string
	Name      string
	PolicyID  string
	PoolID    string
	Mutations []scenario.Mutation
	// Pool, when set, replaces the stored pool for the scenario pass only.
	Pool *model.Pool
}

// RunScenario compares the baseline valuation with the mutated roster.
func (s *Service) RunScenario(ctx context.Context, req ScenarioRequest) (scenario.Result, error) {
	rel, p, pool, err := s.inputs(ctx, req.PolicyID, req.PoolID)
	if err != nil {
		return scenario.Result{}, err
	}
	res, err := s.runner.Run(rel, &p, &pool, scenario.Scenario{
		ID:        req.ID,
		Name:      req.Name,
		Mutations: req.Mutations,
		Pool:      req.Pool,
	})
	if err != nil {
		return scenario.Result{}, err
	}
	metrics.RecordScenarioRun(len(res.Diff))
	return res, nil
}

// SaveScenario validates and stores a named mutation list.
func (s *Service) SaveScenario(ctx context.Context, name, policyID, poolID string, mutations []byte) (model.ScenarioRecord, error) {
	st, err := s.storeOrErr()
	if err != nil {
		return model.ScenarioRecord{}, err
	}
	if name == "" {
		return model.ScenarioRecord{}, fmt.Errorf("%w: scenario name is required", ErrInvalidInput)
	}
	decoded, err := scenario.DecodeMutations(mutations)
	if err != nil {
		return model.ScenarioRecord{}, err
	}
	canonical, err := scenario.EncodeMutations(decoded)
	if err != nil {
		return model.ScenarioRecord{}, err
	}
	if policyID == "" {
		policyID = s.defaultPolicy
	}
	if poolID == "" {
		poolID = s.defaultPool
	}
	rec := model.ScenarioRecord{
		ID:        uuid.NewString(),
		Name:      name,
		PolicyID:  policyID,
		PoolID:    poolID,
		Mutations: canonical,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.SaveScenario(ctx, rec); err != nil {
		return model.ScenarioRecord{}, fmt.Errorf("save scenario: %w", err)
	}
	return rec, nil
}

// RunSavedScenario loads a stored scenario and runs it under its policy and pool.
func (s *Service) RunSavedScenario(ctx context.Context, id string) (scenario.Result, error) {
	st, err := s.storeOrErr()
	if err != nil {
		return scenario.Result{}, err
	}
	rec, err := st.Scenario(ctx, id)
	if err != nil {
		return scenario.Result{}, err
	}
	mutations, err := scenario.DecodeMutations(rec.Mutations)
	if err != nil {
		return scenario.Result{}, fmt.Errorf("stored scenario %s: %w", id, err)
	}
	return s.RunScenario(ctx, ScenarioRequest{
		ID:        rec.ID,
		Name:      rec.Name,
		PolicyID:  rec.PolicyID,
		PoolID:    rec.PoolID,
		Mutations: mutations,
	})
}

// BudgetReport evaluates the roster against the budget guardrails.
func (s *Service) BudgetReport(ctx context.Context) (budget.Report, error) {
	roster, err := s.roster(ctx)
	if err != nil {
		return budget.Report{}, err
	}
	r := s.alloc.Report(roster)
	metrics.RecordGuardrailStatus(string(r.Guardrail.Status))
	return r, nil
}

// Forecast projects the roster 1..years seasons out.
func (s *Service) Forecast(ctx context.Context, years int) ([]forecast.Year, error) {
	roster, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.proj.Years(roster, years, s.alloc.Allocated(roster))
	if err != nil {
		return nil, err
	}
	metrics.RecordForecastRun()
	return out, nil
}

// SuggestReplacement returns the roster spot a recruit in group would displace.
func (s *Service) SuggestReplacement(ctx context.Context, group string) (model.RosterPlayer, error) {
	if group == "" {
		group = s.demo.TargetGroup
	}
	roster, err := s.roster(ctx)
	if err != nil {
		return model.RosterPlayer{}, err
	}
	return s.selector.Suggest(roster, group)
}

// BeforeAfter builds the recruit what-if report for the current roster.
func (s *Service) BeforeAfter(ctx context.Context) (summary.State, error) {
	roster, err := s.roster(ctx)
	if err != nil {
		return summary.State{}, err
	}
	st, err := s.builder.Build(roster, uuid.NewString())
	if err != nil {
		return summary.State{}, err
	}
	metrics.RecordVerdict(string(st.Verdict))
	metrics.RecordGuardrailStatus(string(st.Budget.After.Guardrail.Status))
	return st, nil
}

// Import upserts relation and roster rows.
func (s *Service) Import(ctx context.Context, rel model.Relations, roster []model.RosterPlayer) error {
	st, err := s.storeOrErr()
	if err != nil {
		return err
	}
	if len(rel.Players)+len(rel.Usage)+len(rel.Grades)+len(rel.Roles) > 0 {
		if err := st.ImportRelations(ctx, rel); err != nil {
			return fmt.Errorf("import relations: %w", err)
		}
	}
	if len(roster) > 0 {
		if err := st.ImportRoster(ctx, roster); err != nil {
			return fmt.Errorf("import roster: %w", err)
		}
	}
	s.logger.Info(ctx, "import complete",
		logger.Int("players", len(rel.Players)),
		logger.Int("usage_rows", len(rel.Usage)),
		logger.Int("roster_rows", len(roster)),
	)
	return nil
}

// Relations returns the stored relations.
func (s *Service) Relations(ctx context.Context) (model.Relations, error) {
	st, err := s.storeOrErr()
	if err != nil {
		return model.Relations{}, err
	}
	return st.Relations(ctx)
}

// Roster returns the stored roster with risk score and color derived.
func (s *Service) Roster(ctx context.Context) ([]model.RosterPlayer, error) {
	return s.roster(ctx)
}

// SubmitRecompute enqueues an asynchronous valuation recompute. A repeated requestID
// returns the job created by the first submission.
func (s *Service) SubmitRecompute(ctx context.Context, requestID, policyID, poolID string) (JobStatus, error) {
	s.mu.RLock()
	started, q, d := s.started, s.jobQueue, s.deduper
	s.mu.RUnlock()
	if !started {
		return JobStatus{}, ErrNotStarted
	}

	if _, _, _, err := s.inputs(ctx, policyID, poolID); err != nil {
		return JobStatus{}, err
	}
	if policyID == "" {
		policyID = s.defaultPolicy
	}
	if poolID == "" {
		poolID = s.defaultPool
	}

	job := model.Job{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		PolicyID:    policyID,
		PoolID:      poolID,
		SubmittedAt: time.Now().UTC(),
	}
	if requestID != "" {
		if existing, dup := d.Claim(ctx, requestID, job.ID); dup {
			metrics.RecordJobDuplicate()
			st, ok := s.jobs.get(existing)
			if !ok {
				st = JobStatus{ID: existing, RequestID: requestID, State: JobDone}
			}
			st.Duplicate = true
			return st, nil
		}
	}

	s.jobs.put(newJobStatus(job))
	if err := q.Enqueue(ctx, job); err != nil {
		s.jobs.remove(job.ID)
		if requestID != "" {
			d.Release(ctx, requestID)
		}
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return JobStatus{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return JobStatus{}, err
	}
	st, _ := s.jobs.get(job.ID)
	return st, nil
}

// Job returns the status of a submitted recompute.
func (s *Service) Job(_ context.Context, id string) (JobStatus, error) {
	st, ok := s.jobs.get(id)
	if !ok {
		return JobStatus{}, fmt.Errorf("job %q: %w", id, model.ErrNotFound)
	}
	return st, nil
}

// Process runs one recompute job; the worker pool calls it.
func (s *Service) Process(ctx context.Context, job model.Job) error {
	s.jobs.update(job.ID, func(st *JobStatus) { st.State = JobRunning })
	snap, err := s.ComputeValuation(ctx, job.PolicyID, job.PoolID, true)
	now := time.Now().UTC()
	s.jobs.update(job.ID, func(st *JobStatus) {
		st.FinishedAt = &now
		if err != nil {
			st.State = JobFailed
			st.Error = err.Error()
			return
		}
		st.State = JobDone
		st.Rows = len(snap.Rows)
	})
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"defaultPolicy":  s.defaultPolicy,
		"defaultPool":    s.defaultPool,
		"jobsByState":    s.jobs.counts(),
		"formulaVariant": formulaName(s.formula),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len()
		stats["dedupeKeys"] = s.deduper.Size()
		stats["workerCount"] = s.pool.Size()
	}
	return stats
}

func formulaName(f valuation.Formula) string {
	if f == valuation.SafePower {
		return "safe_power"
	}
	return "stabilized"
}
