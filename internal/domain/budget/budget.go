// Package budget aggregates roster costs into position-group allocations against a fixed
// total budget and evaluates the advisory guardrails.
package budget

import (
	"fmt"
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/money"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
)

// Remaining is the budget headroom view.
type Remaining struct {
	TotalBudget        float64 `json:"total_budget"`
	Available          float64 `json:"available"`
	Allocated          float64 `json:"allocated"`
	Remaining          float64 `json:"remaining"`
	ContingencyReserve float64 `json:"contingency_reserve"`
}

// Status is the guardrail evaluation of a roster.
type Status struct {
	Status  types.GuardrailStatus `json:"status"`
	Reasons []string              `json:"reasons"`
}

// Report bundles every allocator output for one roster.
type Report struct {
	Budget      model.Budget       `json:"budget"`
	Remaining   Remaining          `json:"remaining"`
	Guardrail   Status             `json:"guardrail"`
	GroupShares map[string]float64 `json:"group_shares"`
}

// Allocator computes allocations from a budget configuration.
type Allocator struct {
	cfg policy.BudgetConfig
}

// New creates an allocator.
func New(cfg policy.BudgetConfig) *Allocator {
	return &Allocator{cfg: cfg}
}

// Config returns the allocator settings.
func (a *Allocator) Config() policy.BudgetConfig {
	return a.cfg
}

// Cost is the player's estimated cost, or the band-derived cost when none is set.
func (a *Allocator) Cost(p model.RosterPlayer) float64 {
	if p.EstimatedCost > 0 {
		return p.EstimatedCost
	}
	band := a.cfg.NILBands[p.NILBand]
	cost := band.Midpoint() * a.cfg.RoleMultiplier(p.Role) * a.cfg.PositionWeight(p.PositionGroup)
	cost = money.ToUnit(cost, a.cfg.RoundingUnit)
	if a.cfg.MaxPerPlayer > 0 && cost > a.cfg.MaxPerPlayer {
		cost = a.cfg.MaxPerPlayer
	}
	return cost
}

// AllocationsByGroup sums player costs per position group.
func (a *Allocator) AllocationsByGroup(roster []model.RosterPlayer, excludeSimRemoved bool) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range roster {
		if excludeSimRemoved && p.SimRemoved {
			continue
		}
		out[p.PositionGroup] += a.Cost(p)
	}
	return out
}

// Allocated is the total cost of the active roster.
func (a *Allocator) Allocated(roster []model.RosterPlayer) float64 {
	total := 0.0
	for _, v := range a.AllocationsByGroup(roster, true) {
		total += v
	}
	return total
}

// Remaining reports headroom for the active roster.
func (a *Allocator) Remaining(roster []model.RosterPlayer) Remaining {
	available := a.cfg.TotalBudget
	if a.cfg.TreatReserveAsLocked {
		available -= a.cfg.ContingencyReserve
	}
	allocated := a.Allocated(roster)
	return Remaining{
		TotalBudget:        a.cfg.TotalBudget,
		Available:          available,
		Allocated:          allocated,
		Remaining:          available - allocated,
		ContingencyReserve: a.cfg.ContingencyReserve,
	}
}

// GroupShares is each group's fraction of the total allocated amount.
func (a *Allocator) GroupShares(roster []model.RosterPlayer) map[string]float64 {
	groups := a.AllocationsByGroup(roster, true)
	total := 0.0
	for _, v := range groups {
		total += v
	}
	out := make(map[string]float64, len(groups))
	if total <= 0 {
		return out
	}
	for g, v := range groups {
		out[g] = v / total
	}
	return out
}

// GuardrailStatus evaluates every guardrail and accumulates all triggered reasons.
// Groups are checked in name order so reasons are stable.
func (a *Allocator) GuardrailStatus(roster []model.RosterPlayer) Status {
	st := Status{Status: types.StatusWithin, Reasons: []string{}}
	rem := a.Remaining(roster)

	switch {
	case rem.Remaining < 0:
		st.Status = st.Status.Worse(types.StatusOver)
		st.Reasons = append(st.Reasons, fmt.Sprintf("budget exceeded by %s", money.USD(-rem.Remaining)))
	case rem.Remaining < a.cfg.MinRemainingBuffer:
		st.Status = st.Status.Worse(types.StatusNear)
		st.Reasons = append(st.Reasons, fmt.Sprintf("remaining %s below buffer %s",
			money.USD(rem.Remaining), money.USD(a.cfg.MinRemainingBuffer)))
	}

	shares := a.GroupShares(roster)
	groups := make([]string, 0, len(shares))
	for g := range shares {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		pct := shares[g]
		switch {
		case pct > a.cfg.MaxPositionPercent:
			st.Status = st.Status.Worse(types.StatusOver)
			st.Reasons = append(st.Reasons, fmt.Sprintf("%s at %s of allocated exceeds %s cap",
				g, money.Percent(pct), money.Percent(a.cfg.MaxPositionPercent)))
		case pct > a.cfg.WarnPositionPercent:
			st.Status = st.Status.Worse(types.StatusNear)
			st.Reasons = append(st.Reasons, fmt.Sprintf("%s at %s of allocated above %s warning",
				g, money.Percent(pct), money.Percent(a.cfg.WarnPositionPercent)))
		}
	}
	return st
}

// Budget is the Budget record for the active roster.
func (a *Allocator) Budget(roster []model.RosterPlayer) model.Budget {
	return model.Budget{
		TotalBudget: a.cfg.TotalBudget,
		Allocations: a.AllocationsByGroup(roster, true),
		Guardrails: model.BudgetGuardrails{
			MaxPerPlayer:          a.cfg.MaxPerPlayer,
			MaxPerPositionPercent: a.cfg.MaxPositionPercent,
		},
	}
}

// Report computes every allocator view at once.
func (a *Allocator) Report(roster []model.RosterPlayer) Report {
	return Report{
		Budget:      a.Budget(roster),
		Remaining:   a.Remaining(roster),
		Guardrail:   a.GuardrailStatus(roster),
		GroupShares: a.GroupShares(roster),
	}
}
