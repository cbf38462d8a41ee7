package policy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
)

// NILBand is a named compensation band.
type NILBand struct {
	Low  float64 `koanf:"low" json:"low"`
	High float64 `koanf:"high" json:"high"`
}

// Midpoint is the center of the band.
func (b NILBand) Midpoint() float64 { return (b.Low + b.High) / 2 }

// BudgetConfig configures the budget allocator.
type BudgetConfig struct {
	TotalBudget          float64            `koanf:"total_budget" json:"total_budget"`
	ContingencyReserve   float64            `koanf:"contingency_reserve" json:"contingency_reserve"`
	TreatReserveAsLocked bool               `koanf:"treat_reserve_as_locked" json:"treat_reserve_as_locked"`
	MaxPerPlayer         float64            `koanf:"max_per_player" json:"max_per_player"`
	MaxPositionPercent   float64            `koanf:"max_position_percent" json:"max_position_percent"`
	WarnPositionPercent  float64            `koanf:"warn_position_percent" json:"warn_position_percent"`
	MinRemainingBuffer   float64            `koanf:"min_remaining_buffer" json:"min_remaining_buffer"`
	RoundingUnit         float64            `koanf:"rounding_unit" json:"rounding_unit"`
	NILBands             map[string]NILBand `koanf:"nil_bands" json:"nil_bands"`
	RoleMultipliers      map[string]float64 `koanf:"role_multipliers" json:"role_multipliers"`
	PositionWeights      map[string]float64 `koanf:"position_weights" json:"position_weights"`
}

// DefaultBudget returns the demo budget settings.
func DefaultBudget() BudgetConfig {
	return BudgetConfig{
		TotalBudget:          6_000_000,
		ContingencyReserve:   300_000,
		TreatReserveAsLocked: true,
		MaxPerPlayer:         900_000,
		MaxPositionPercent:   0.35,
		WarnPositionPercent:  0.25,
		MinRemainingBuffer:   250_000,
		RoundingUnit:         1_000,
		NILBands: map[string]NILBand{
			"A": {Low: 600_000, High: 1_000_000},
			"B": {Low: 250_000, High: 600_000},
			"C": {Low: 100_000, High: 250_000},
			"D": {Low: 25_000, High: 100_000},
			"E": {Low: 0, High: 25_000},
		},
		RoleMultipliers: map[string]float64{
			string(types.RoleStarter):       1.0,
			string(types.RoleRotation):      0.6,
			string(types.RoleBackup):        0.35,
			string(types.RoleDepth):         0.25,
			string(types.RoleDevelopmental): 0.2,
		},
		PositionWeights: map[string]float64{
			"QB": 1.4,
			"OL": 1.1,
			"DL": 1.1,
			"WR": 1.05,
			"DB": 1.05,
		},
	}
}

// Validate checks the limits the allocator's guardrail evaluation relies on.
func (c BudgetConfig) Validate() error {
	if c.TotalBudget <= 0 {
		return fmt.Errorf("%w: total_budget must be positive, got %v", ErrInvalidBudget, c.TotalBudget)
	}
	if c.ContingencyReserve < 0 || c.ContingencyReserve > c.TotalBudget {
		return fmt.Errorf("%w: contingency_reserve must be in [0, total_budget], got %v", ErrInvalidBudget, c.ContingencyReserve)
	}
	if c.MaxPositionPercent <= 0 || c.MaxPositionPercent > 1 {
		return fmt.Errorf("%w: max_position_percent must be in (0, 1], got %v", ErrInvalidBudget, c.MaxPositionPercent)
	}
	if c.WarnPositionPercent <= 0 || c.WarnPositionPercent > c.MaxPositionPercent {
		return fmt.Errorf("%w: warn_position_percent must be in (0, max_position_percent], got %v", ErrInvalidBudget, c.WarnPositionPercent)
	}
	if c.MaxPerPlayer < 0 || c.MinRemainingBuffer < 0 || c.RoundingUnit < 0 {
		return fmt.Errorf("%w: max_per_player, min_remaining_buffer and rounding_unit must be >= 0", ErrInvalidBudget)
	}
	for name, b := range c.NILBands {
		if b.Low < 0 || b.High < b.Low {
			return fmt.Errorf("%w: nil band %s must satisfy 0 <= low <= high", ErrInvalidBudget, name)
		}
	}
	return nil
}

// Normalize upper-cases the band, role and position keys so overrides land on the defaults.
func (c *BudgetConfig) Normalize() {
	c.NILBands = UpperKeys(c.NILBands)
	c.RoleMultipliers = UpperKeys(c.RoleMultipliers)
	c.PositionWeights = UpperKeys(c.PositionWeights)
}

// RoleMultiplier returns the cost multiplier for role, 1.0 when unset.
func (c BudgetConfig) RoleMultiplier(r types.Role) float64 {
	if v, ok := c.RoleMultipliers[string(r)]; ok {
		return v
	}
	return 1.0
}

// PositionWeight returns the cost weight for a position group, 1.0 when unset.
func (c BudgetConfig) PositionWeight(group string) float64 {
	return Multipliers(c.PositionWeights).For(group)
}

// RiskWeights derive a roster player's composite risk score and color.
type RiskWeights struct {
	Injury    float64 `koanf:"injury" json:"injury"`
	Transfer  float64 `koanf:"transfer" json:"transfer"`
	Academics float64 `koanf:"academics" json:"academics"`
	YellowAt  float64 `koanf:"yellow_at" json:"yellow_at"`
	RedAt     float64 `koanf:"red_at" json:"red_at"`
}

// DefaultRisk returns the demo risk weights.
func DefaultRisk() RiskWeights {
	return RiskWeights{Injury: 0.4, Transfer: 0.4, Academics: 0.2, YellowAt: 34, RedAt: 67}
}

// Score is the weighted mean of the risk components, rounded to one decimal.
func (w RiskWeights) Score(r model.RiskProfile) float64 {
	total := w.Injury + w.Transfer + w.Academics
	if total <= 0 {
		return 0
	}
	s := (w.Injury*r.Injury + w.Transfer*r.Transfer + w.Academics*r.Academics) / total
	return math.Round(s*10) / 10
}

// Color buckets a risk score.
func (w RiskWeights) Color(score float64) types.RiskColor {
	switch {
	case score >= w.RedAt:
		return types.ColorRed
	case score >= w.YellowAt:
		return types.ColorYellow
	default:
		return types.ColorGreen
	}
}

// Apply sets RiskScore and RiskColor on p.
func (w RiskWeights) Apply(p *model.RosterPlayer) {
	p.RiskScore = w.Score(p.Risk)
	p.RiskColor = w.Color(p.RiskScore)
}

// ForecastConfig configures the multi-year projector.
type ForecastConfig struct {
	AsOfYear               int                `koanf:"as_of_year" json:"as_of_year"`
	InflationRate          float64            `koanf:"inflation_rate" json:"inflation_rate"`
	BaseTransferProb       map[string]float64 `koanf:"base_transfer_prob" json:"base_transfer_prob"`
	RoleTransferMultiplier map[string]float64 `koanf:"role_transfer_multiplier" json:"role_transfer_multiplier"`
	TargetHeadcount        map[string]int     `koanf:"target_headcount" json:"target_headcount"`
}

// DefaultForecast returns the demo forecast settings.
func DefaultForecast() ForecastConfig {
	return ForecastConfig{
		AsOfYear:      2026,
		InflationRate: 0.05,
		BaseTransferProb: map[string]float64{
			string(types.ColorGreen):  0.05,
			string(types.ColorYellow): 0.15,
			string(types.ColorRed):    0.35,
		},
		RoleTransferMultiplier: map[string]float64{
			string(types.RoleStarter):       0.6,
			string(types.RoleRotation):      1.0,
			string(types.RoleBackup):        1.3,
			string(types.RoleDepth):         1.5,
			string(types.RoleDevelopmental): 1.2,
		},
		TargetHeadcount: map[string]int{
			"QB": 2,
			"RB": 2,
			"WR": 3,
			"TE": 2,
			"OL": 5,
			"DL": 4,
			"LB": 3,
			"DB": 4,
			"ST": 1,
		},
	}
}

// Normalize upper-cases the color, role and group keys so overrides land on the defaults.
func (c *ForecastConfig) Normalize() {
	c.BaseTransferProb = UpperKeys(c.BaseTransferProb)
	c.RoleTransferMultiplier = UpperKeys(c.RoleTransferMultiplier)
	c.TargetHeadcount = UpperKeys(c.TargetHeadcount)
}

// UpperKeys returns m keyed by upper-case codes. Keys that were not already upper case
// come from an override layered over the defaults, so they win a collision.
func UpperKeys[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	var overrides []string
	for k, v := range m {
		if strings.ToUpper(k) == k {
			out[k] = v
		} else {
			overrides = append(overrides, k)
		}
	}
	sort.Strings(overrides)
	for _, k := range overrides {
		out[strings.ToUpper(k)] = m[k]
	}
	return out
}

// TransferProbability is base probability by color times the role multiplier.
func (c ForecastConfig) TransferProbability(color types.RiskColor, role types.Role) float64 {
	base := c.BaseTransferProb[string(color)]
	mult, ok := c.RoleTransferMultiplier[string(role)]
	if !ok {
		mult = 1.0
	}
	return base * mult
}

// ReplacementRules configure the replacement candidate selector.
type ReplacementRules struct {
	ExcludedRoles         []string `koanf:"excluded_roles" json:"excluded_roles"`
	GraduationWindowYears int      `koanf:"graduation_window_years" json:"graduation_window_years"`
	MaxDepthGrade         float64  `koanf:"max_depth_grade" json:"max_depth_grade"`
	MaxDepthSnapsShare    float64  `koanf:"max_depth_snaps_share" json:"max_depth_snaps_share"`
}

// DefaultReplacement returns the demo selector rules.
func DefaultReplacement() ReplacementRules {
	return ReplacementRules{
		ExcludedRoles:         []string{string(types.RoleStarter)},
		GraduationWindowYears: 0,
		MaxDepthGrade:         68,
		MaxDepthSnapsShare:    20,
	}
}

// Excludes reports whether role is filtered out before selection.
func (r ReplacementRules) Excludes(role types.Role) bool {
	for _, ex := range r.ExcludedRoles {
		if types.ParseRole(ex) == role {
			return true
		}
	}
	return false
}

// DemoScenario is the fixed recruit used by the before/after report.
// The recruit cost is fixed so the narrative is reproducible.
type DemoScenario struct {
	RecruitID        string            `koanf:"recruit_id" json:"recruit_id"`
	RecruitName      string            `koanf:"recruit_name" json:"recruit_name"`
	Position         string            `koanf:"position" json:"position"`
	TargetGroup      string            `koanf:"target_group" json:"target_group"`
	GradYear         int               `koanf:"grad_year" json:"grad_year"`
	Role             string            `koanf:"role" json:"role"`
	PerformanceGrade float64           `koanf:"performance_grade" json:"performance_grade"`
	NILBand          string            `koanf:"nil_band" json:"nil_band"`
	RecruitCost      float64           `koanf:"recruit_cost" json:"recruit_cost"`
	Risk             model.RiskProfile `koanf:"risk" json:"risk"`
}

// DefaultDemo returns the canned offensive-line recruit.
func DefaultDemo() DemoScenario {
	return DemoScenario{
		RecruitID:        "recruit-ol-portal",
		RecruitName:      "Marcus Hale",
		Position:         "OT",
		TargetGroup:      "OL",
		GradYear:         2029,
		Role:             string(types.RoleRotation),
		PerformanceGrade: 78,
		NILBand:          "C",
		RecruitCost:      185_000,
		Risk:             model.RiskProfile{Injury: 20, Transfer: 30, Academics: 10},
	}
}

// Recruit builds the roster row for the demo recruit, tagged as simulation-added.
func (d DemoScenario) Recruit(risk RiskWeights, scenarioID string) model.RosterPlayer {
	p := model.RosterPlayer{
		ID:                   d.RecruitID,
		Name:                 d.RecruitName,
		Position:             d.Position,
		PositionGroup:        d.TargetGroup,
		GradYear:             d.GradYear,
		EligibilityRemaining: 4,
		NILBand:              d.NILBand,
		EstimatedCost:        d.RecruitCost,
		Role:                 types.ParseRole(d.Role),
		PerformanceGrade:     d.PerformanceGrade,
		Risk:                 d.Risk,
		SimAdded:             true,
		SimScenarioID:        scenarioID,
	}
	risk.Apply(&p)
	return p
}
