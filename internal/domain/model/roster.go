package model

import (
	"encoding/json"
	"time"

	"github.com/okian/gridiron/internal/domain/types"
)

// RiskProfile holds the 0-100 component risks of a roster player.
type RiskProfile struct {
	Injury    float64 `json:"injury"`
	Transfer  float64 `json:"transfer"`
	Academics float64 `json:"academics"`
}

// RosterPlayer is the budget/forecast view of a player.
type RosterPlayer struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Position             string          `json:"position"`
	PositionGroup        string          `json:"position_group"`
	Year                 string          `json:"year,omitempty"`
	GradYear             int             `json:"grad_year"`
	EligibilityRemaining int             `json:"eligibility_remaining"`
	NILBand              string          `json:"nil_band,omitempty"`
	RevShareBand         string          `json:"rev_share_band,omitempty"`
	EstimatedCost        float64         `json:"estimated_cost"`
	Role                 types.Role      `json:"role"`
	SnapsShare           float64         `json:"snaps_share"`
	PerformanceGrade     float64         `json:"performance_grade"`
	Risk                 RiskProfile     `json:"risk"`
	RiskScore            float64         `json:"risk_score"`
	RiskColor            types.RiskColor `json:"risk_color"`

	SimAdded      bool   `json:"sim_added,omitempty"`
	SimRemoved    bool   `json:"sim_removed,omitempty"`
	SimScenarioID string `json:"sim_scenario_id,omitempty"`
}

// CloneRoster copies a roster so tagging never touches the caller's slice.
func CloneRoster(roster []RosterPlayer) []RosterPlayer {
	return append([]RosterPlayer(nil), roster...)
}

// Active returns players not removed by a simulation.
func Active(roster []RosterPlayer) []RosterPlayer {
	out := make([]RosterPlayer, 0, len(roster))
	for _, p := range roster {
		if !p.SimRemoved {
			out = append(out, p)
		}
	}
	return out
}

// Budget is the allocation view of a fixed total budget.
type Budget struct {
	TotalBudget float64            `json:"total_budget"`
	Allocations map[string]float64 `json:"allocations"`
	Guardrails  BudgetGuardrails   `json:"guardrails"`
}

// BudgetGuardrails are the advisory limits reported with a Budget.
type BudgetGuardrails struct {
	MaxPerPlayer          float64 `json:"max_per_player"`
	MaxPerPositionPercent float64 `json:"max_per_position_percent"`
}

// ScenarioRecord is a persisted, named list of mutations.
type ScenarioRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	PolicyID  string          `json:"policy_id"`
	PoolID    string          `json:"pool_id"`
	Mutations json.RawMessage `json:"mutations"`
	CreatedAt time.Time       `json:"created_at"`
}

// SnapshotRecord is a persisted valuation row.
type SnapshotRecord struct {
	PoolID      string  `json:"pool_id"`
	PolicyID    string  `json:"policy_id"`
	PlayerID    string  `json:"player_id"`
	TotalScore  float64 `json:"total_score"`
	SharePct    float64 `json:"share_pct"`
	DollarsLow  float64 `json:"dollars_low"`
	DollarsMid  float64 `json:"dollars_mid"`
	DollarsHigh float64 `json:"dollars_high"`
	Confidence  float64 `json:"confidence"`
}
