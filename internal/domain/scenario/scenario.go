// Package scenario applies what-if mutations to roster relations, values the baseline
// and mutated rosters, and diffs the two allocations by player.
package scenario

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/money"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/internal/domain/valuation"
)

// Summary describes one valuation snapshot.
type Summary struct {
	PoolAmount     float64 `json:"pool_amount"`
	ReservedAmount float64 `json:"reserved_amount"`
	Allocatable    float64 `json:"allocatable"`
	TotalPlayers   int     `json:"total_players"`
	TopSharePct    float64 `json:"top_share_pct"`
	TopPlayer      string  `json:"top_player,omitempty"`
}

// Snapshot is a full valuation run: rows sorted by share and their summary.
type Snapshot struct {
	Rows    []valuation.Result `json:"rows"`
	Summary Summary            `json:"summary"`
}

// Values are the compared fields of one side of a diff row.
type Values struct {
	SharePct    float64 `json:"share_pct"`
	DollarsLow  float64 `json:"dollars_low"`
	DollarsMid  float64 `json:"dollars_mid"`
	DollarsHigh float64 `json:"dollars_high"`
}

// DiffRow compares one player across baseline and scenario.
type DiffRow struct {
	PlayerID   string           `json:"player_id"`
	ChangeType types.ChangeType `json:"change_type"`
	Baseline   Values           `json:"baseline"`
	Scenario   Values           `json:"scenario"`
	Delta      Values           `json:"delta"`
}

// Scenario is a named list of mutations with an optional pool override.
type Scenario struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Mutations []Mutation  `json:"-"`
	Pool      *model.Pool `json:"pool,omitempty"`
}

// Result is a baseline/scenario pair and their diff.
type Result struct {
	ScenarioID string    `json:"scenario_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Baseline   Snapshot  `json:"baseline"`
	Scenario   Snapshot  `json:"scenario"`
	Diff       []DiffRow `json:"diff"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithValuationEngine sets the engine used for both passes.
func WithValuationEngine(e *valuation.Engine) Option {
	return func(r *Runner) {
		if e != nil {
			r.engine = e
		}
	}
}

// Runner computes snapshots and scenario comparisons.
type Runner struct {
	engine *valuation.Engine
}

// NewRunner creates a runner with the default valuation engine unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{engine: valuation.NewEngine()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ComputeSnapshots values rel under p and allocates pool. A missing policy or pool is an error.
func (r *Runner) ComputeSnapshots(rel model.Relations, p *policy.Policy, pool *model.Pool) (Snapshot, error) {
	if p == nil {
		return Snapshot{}, fmt.Errorf("policy %w", model.ErrNotFound)
	}
	if pool == nil {
		return Snapshot{}, fmt.Errorf("pool %w", model.ErrNotFound)
	}
	allocatable := pool.Allocatable()
	rows := r.engine.Value(valuation.InputsFromRelations(rel), *p, allocatable)
	valuation.SortByShare(rows)

	s := Snapshot{
		Rows: rows,
		Summary: Summary{
			PoolAmount:     pool.PoolAmount,
			ReservedAmount: pool.ReservedAmount,
			Allocatable:    allocatable,
			TotalPlayers:   len(rows),
		},
	}
	if len(rows) > 0 {
		s.Summary.TopSharePct = rows[0].SharePct
		s.Summary.TopPlayer = rows[0].PlayerID
	}
	return s, nil
}

// Run recomputes the baseline and the mutated roster from the same relations and diffs them.
// The scenario pool defaults to the baseline pool.
func (r *Runner) Run(baseline model.Relations, p *policy.Policy, pool *model.Pool, s Scenario) (Result, error) {
	base, err := r.ComputeSnapshots(baseline, p, pool)
	if err != nil {
		return Result{}, err
	}
	mutated, err := Apply(baseline, s.Mutations)
	if err != nil {
		return Result{}, err
	}
	scnPool := pool
	if s.Pool != nil {
		scnPool = s.Pool
	}
	scn, err := r.ComputeSnapshots(mutated, p, scnPool)
	if err != nil {
		return Result{}, err
	}
	return Result{
		ScenarioID: s.ID,
		Name:       s.Name,
		Baseline:   base,
		Scenario:   scn,
		Diff:       Diff(base.Rows, scn.Rows),
	}, nil
}

// Diff returns one row per player in either set, largest absolute dollar swing first.
// Equal swings are ordered by player id.
func Diff(baseline, scenario []valuation.Result) []DiffRow {
	base := make(map[string]valuation.Result, len(baseline))
	for _, r := range baseline {
		base[r.PlayerID] = r
	}
	scn := make(map[string]valuation.Result, len(scenario))
	for _, r := range scenario {
		scn[r.PlayerID] = r
	}

	ids := make([]string, 0, len(base)+len(scn))
	seen := make(map[string]struct{}, len(base)+len(scn))
	for _, set := range []map[string]valuation.Result{base, scn} {
		for id := range set {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	rows := make([]DiffRow, 0, len(ids))
	for _, id := range ids {
		b, inBase := base[id]
		s, inScn := scn[id]
		row := DiffRow{PlayerID: id}
		switch {
		case inBase && inScn:
			row.ChangeType = types.ChangeChanged
			row.Baseline, row.Scenario = valuesOf(b), valuesOf(s)
		case inBase:
			row.ChangeType = types.ChangeRemoved
			row.Baseline = valuesOf(b)
		default:
			row.ChangeType = types.ChangeAdded
			row.Scenario = valuesOf(s)
		}
		row.Delta = Values{
			SharePct:    money.Round(row.Scenario.SharePct-row.Baseline.SharePct, 4),
			DollarsLow:  money.Cents(row.Scenario.DollarsLow - row.Baseline.DollarsLow),
			DollarsMid:  money.Cents(row.Scenario.DollarsMid - row.Baseline.DollarsMid),
			DollarsHigh: money.Cents(row.Scenario.DollarsHigh - row.Baseline.DollarsHigh),
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		di, dj := math.Abs(rows[i].Delta.DollarsMid), math.Abs(rows[j].Delta.DollarsMid)
		if di != dj {
			return di > dj
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows
}

func valuesOf(r valuation.Result) Values {
	return Values{
		SharePct:    money.Round(r.SharePct, 4),
		DollarsLow:  r.DollarsLow,
		DollarsMid:  r.DollarsMid,
		DollarsHigh: r.DollarsHigh,
	}
}
