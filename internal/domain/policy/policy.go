// Package policy holds the static, configurable parameters every engine reads.
// It is pure data with defaults and validation; no engine behavior lives here.
package policy

import (
	"fmt"
	"strings"
)

// Weights are the exponents of the multiplicative valuation score. They need not sum to 1.
type Weights struct {
	Impact       float64 `koanf:"impact" json:"impact"`
	Availability float64 `koanf:"availability" json:"availability"`
	Leverage     float64 `koanf:"leverage" json:"leverage"`
	Scarcity     float64 `koanf:"scarcity" json:"scarcity"`
}

// Multipliers maps a position code to its value multiplier.
type Multipliers map[string]float64

// For returns the multiplier for position, 1.0 when absent. Lookup ignores case.
func (m Multipliers) For(position string) float64 {
	if v, ok := m[position]; ok {
		return v
	}
	if v, ok := m[strings.ToUpper(position)]; ok {
		return v
	}
	if v, ok := m[strings.ToLower(position)]; ok {
		return v
	}
	return 1.0
}

// Guardrails are the valuation limits applied while converting shares to dollars.
type Guardrails struct {
	MaxSharePercent  float64 `koanf:"max_share_percent" json:"max_share_percent"`
	FloorRotationUSD float64 `koanf:"floor_rotation_usd" json:"floor_rotation_usd"`
	MaxPctPerPlayer  float64 `koanf:"max_pct_per_player" json:"max_pct_per_player"`
	MinPctStarter    float64 `koanf:"min_pct_starter" json:"min_pct_starter"`
	PositionCapPct   float64 `koanf:"position_cap_pct" json:"position_cap_pct"`
}

// Policy is a named valuation policy.
type Policy struct {
	ID                  string      `koanf:"id" json:"id"`
	Name                string      `koanf:"name" json:"name"`
	Weights             Weights     `koanf:"weights" json:"weights"`
	Guardrails          Guardrails  `koanf:"guardrails" json:"guardrails"`
	PositionMultipliers Multipliers `koanf:"position_multipliers" json:"position_multipliers"`
}

// Default returns the demo revenue-share policy.
func Default() Policy {
	return Policy{
		ID:   "default",
		Name: "Revenue share baseline",
		Weights: Weights{
			Impact:       1.0,
			Availability: 0.6,
			Leverage:     0.4,
			Scarcity:     1.0,
		},
		Guardrails: Guardrails{
			MaxSharePercent:  0.15,
			FloorRotationUSD: 15_000,
			MaxPctPerPlayer:  0.15,
			MinPctStarter:    0.01,
			PositionCapPct:   0.30,
		},
		PositionMultipliers: Multipliers{
			"QB":   1.35,
			"EDGE": 1.25,
			"OT":   1.20,
			"CB":   1.15,
			"WR":   1.10,
			"DT":   1.10,
			"OG":   1.05,
			"C":    1.05,
			"LB":   1.00,
			"S":    1.00,
			"RB":   0.95,
			"TE":   0.95,
			"K":    0.90,
			"P":    0.90,
			"LS":   0.90,
		},
	}
}

// Normalize upper-cases the position codes of the multiplier table.
func (p *Policy) Normalize() {
	p.PositionMultipliers = UpperKeys(p.PositionMultipliers)
}

// Validate checks the invariants the valuation engine relies on.
func (p Policy) Validate() error {
	g := p.Guardrails
	if g.MaxSharePercent <= 0 || g.MaxSharePercent > 1 {
		return fmt.Errorf("%w: max_share_percent must be in (0, 1], got %v", ErrInvalidPolicy, g.MaxSharePercent)
	}
	if g.FloorRotationUSD < 0 {
		return fmt.Errorf("%w: floor_rotation_usd must be >= 0, got %v", ErrInvalidPolicy, g.FloorRotationUSD)
	}
	w := p.Weights
	if w.Impact < 0 || w.Availability < 0 || w.Leverage < 0 || w.Scarcity < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidPolicy)
	}
	for pos, m := range p.PositionMultipliers {
		if m < 0 {
			return fmt.Errorf("%w: multiplier for %s must be non-negative", ErrInvalidPolicy, pos)
		}
	}
	return nil
}
