// Package valuation scores players and converts scores into guarded dollar shares of a pool.
//
// All functions are pure: the same inputs always produce the same outputs.
package valuation

import (
	"math"

	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
)

// Formula selects how factor powers are taken.
type Formula int

const (
	// Stabilized adds a small constant to each normalized factor so one zero input
	// does not collapse the whole score.
	Stabilized Formula = iota
	// SafePower takes powers directly; a zero factor zeroes the score.
	SafePower
)

const stabilizer = 0.01

// Scarcity multipliers by replacement risk.
const (
	scarcityLow  = 0.90
	scarcityMed  = 1.00
	scarcityHigh = 1.15
)

// Input is one player's valuation input.
type Input struct {
	PlayerID        string                `json:"player_id"`
	Position        string                `json:"position"`
	Role            types.Role            `json:"role"`
	OverallGrade    float64               `json:"overall_grade"`
	Snaps           int                   `json:"snaps"`
	LeverageSnaps   int                   `json:"leverage_snaps"`
	GamesPlayed     int                   `json:"games_played"`
	ReplacementRisk types.ReplacementRisk `json:"replacement_risk"`
}

// Components are the normalized factors behind a raw score.
type Components struct {
	Impact             float64 `json:"impact"`
	Availability       float64 `json:"availability"`
	Leverage           float64 `json:"leverage"`
	Scarcity           float64 `json:"scarcity"`
	PositionMultiplier float64 `json:"position_multiplier"`
}

// Score is a raw multiplicative score and its components.
type Score struct {
	PlayerID   string     `json:"player_id"`
	Raw        float64    `json:"raw"`
	Components Components `json:"components"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithFormula selects the power formula.
func WithFormula(f Formula) Option {
	return func(e *Engine) {
		e.formula = f
	}
}

// Engine computes valuations.
type Engine struct {
	formula Formula
}

// NewEngine creates an engine using the stabilized formula unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{formula: Stabilized}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TeamTotalSnaps sums snaps across a cohort.
func TeamTotalSnaps(inputs []Input) int {
	total := 0
	for _, in := range inputs {
		if in.Snaps > 0 {
			total += in.Snaps
		}
	}
	return total
}

// Scarcity maps replacement risk to its multiplier; unknown risk is MED.
func Scarcity(r types.ReplacementRisk) float64 {
	switch types.ParseReplacementRisk(string(r)) {
	case types.RiskLow:
		return scarcityLow
	case types.RiskHigh:
		return scarcityHigh
	default:
		return scarcityMed
	}
}

// Score computes the raw multiplicative score of one player.
func (e *Engine) Score(in Input, teamTotalSnaps int, w policy.Weights, m policy.Multipliers) Score {
	if teamTotalSnaps <= 0 {
		teamTotalSnaps = 1
	}
	c := Components{
		Impact:             clamp01(in.OverallGrade / 100),
		Availability:       clamp01(float64(in.Snaps) / float64(teamTotalSnaps)),
		Scarcity:           Scarcity(in.ReplacementRisk),
		PositionMultiplier: m.For(in.Position),
	}
	if in.Snaps > 0 {
		c.Leverage = clamp01(float64(in.LeverageSnaps) / float64(in.Snaps))
	}

	raw := e.pow(c.Impact, w.Impact) *
		e.pow(c.Availability, w.Availability) *
		e.pow(c.Leverage, w.Leverage) *
		math.Pow(c.Scarcity, w.Scarcity) *
		c.PositionMultiplier

	return Score{PlayerID: in.PlayerID, Raw: raw, Components: c}
}

func (e *Engine) pow(base, exp float64) float64 {
	if e.formula == SafePower {
		if base <= 0 {
			return 0
		}
		return math.Pow(base, exp)
	}
	return math.Pow(base+stabilizer, exp)
}

// Confidence is derived from snap and games coverage, independent of the score.
func Confidence(snaps, games int) float64 {
	c := clamp01(float64(snaps)/600)*70 + clamp01(float64(games)/12)*30
	return math.Round(c)
}

// BandWidth is the half-width of the dollar range for a confidence level.
func BandWidth(confidence float64) float64 {
	switch {
	case confidence >= 75:
		return 0.20
	case confidence >= 50:
		return 0.30
	default:
		return 0.40
	}
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
