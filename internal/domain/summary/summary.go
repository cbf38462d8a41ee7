// Package summary composes the allocator, forecast and replacement outputs into a single
// before/after decision report for the canned recruit scenario.
package summary

import (
	"fmt"

	"github.com/okian/gridiron/internal/domain/budget"
	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/money"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/replacement"
	"github.com/okian/gridiron/internal/domain/types"
)

const (
	defaultWhy      = "No measurable improvement over the current roster"
	defaultTradeoff = "No material tradeoffs identified"
)

// BudgetDelta compares allocator reports.
type BudgetDelta struct {
	Before         budget.Report `json:"before"`
	After          budget.Report `json:"after"`
	AllocatedDelta float64       `json:"allocated_delta"`
	RemainingDelta float64       `json:"remaining_delta"`
}

// AllocationDelta compares one position group's spend.
type AllocationDelta struct {
	Group         string  `json:"group"`
	Before        float64 `json:"before"`
	After         float64 `json:"after"`
	Delta         float64 `json:"delta"`
	PercentBefore float64 `json:"percent_before"`
	PercentAfter  float64 `json:"percent_after"`
}

// ForecastDelta compares one forecast year.
type ForecastDelta struct {
	Index      int           `json:"index"`
	Label      string        `json:"label"`
	Before     forecast.Year `json:"before"`
	After      forecast.Year `json:"after"`
	GapBefore  int           `json:"gap_before"`
	GapAfter   int           `json:"gap_after"`
	SpendDelta float64       `json:"spend_delta"`
}

// HeatmapDelta compares risk heatmaps.
type HeatmapDelta struct {
	Before    Heatmap `json:"before"`
	After     Heatmap `json:"after"`
	RedBefore int     `json:"red_before"`
	RedAfter  int     `json:"red_after"`
}

// State is the full before/after decision report.
type State struct {
	ScenarioID       string               `json:"scenario_id"`
	Recruit          model.RosterPlayer   `json:"recruit"`
	Replacement      *model.RosterPlayer  `json:"replacement,omitempty"`
	RosterBefore     []model.RosterPlayer `json:"roster_before"`
	RosterAfter      []model.RosterPlayer `json:"roster_after"`
	Budget           BudgetDelta          `json:"budget"`
	Allocation       AllocationDelta      `json:"allocation"`
	Forecast         []ForecastDelta      `json:"forecast"`
	Heatmap          HeatmapDelta         `json:"heatmap"`
	NewRedIntroduced bool                 `json:"new_red_introduced"`
	Verdict          types.Verdict        `json:"verdict"`
	Why              []string             `json:"why"`
	Tradeoffs        []string             `json:"tradeoffs"`
}

// Builder composes the report from the engines.
type Builder struct {
	alloc    *budget.Allocator
	proj     *forecast.Projector
	selector *replacement.Selector
	demo     policy.DemoScenario
	risk     policy.RiskWeights
}

// New creates a builder.
func New(alloc *budget.Allocator, proj *forecast.Projector, selector *replacement.Selector, demo policy.DemoScenario, risk policy.RiskWeights) *Builder {
	return &Builder{alloc: alloc, proj: proj, selector: selector, demo: demo, risk: risk}
}

// Build adds the demo recruit, removes the selected replacement and compares the two rosters.
// When the target group has no candidate the recruit is added without a removal.
func (b *Builder) Build(roster []model.RosterPlayer, scenarioID string) (State, error) {
	group := b.demo.TargetGroup
	st := State{
		ScenarioID:   scenarioID,
		Recruit:      b.demo.Recruit(b.risk, scenarioID),
		RosterBefore: model.CloneRoster(roster),
	}

	after := model.CloneRoster(roster)
	if rep, ok := b.selector.Select(roster, group); ok {
		for i := range after {
			if after[i].ID == rep.ID {
				after[i].SimRemoved = true
				after[i].SimScenarioID = scenarioID
				rep = after[i]
				break
			}
		}
		st.Replacement = &rep
	}
	st.RosterAfter = append(after, st.Recruit)

	before := b.alloc.Report(st.RosterBefore)
	afterReport := b.alloc.Report(st.RosterAfter)
	st.Budget = BudgetDelta{
		Before:         before,
		After:          afterReport,
		AllocatedDelta: afterReport.Remaining.Allocated - before.Remaining.Allocated,
		RemainingDelta: afterReport.Remaining.Remaining - before.Remaining.Remaining,
	}
	st.Allocation = AllocationDelta{
		Group:         group,
		Before:        before.Budget.Allocations[group],
		After:         afterReport.Budget.Allocations[group],
		Delta:         afterReport.Budget.Allocations[group] - before.Budget.Allocations[group],
		PercentBefore: money.Round(before.GroupShares[group], 4),
		PercentAfter:  money.Round(afterReport.GroupShares[group], 4),
	}

	yearsBefore, err := b.proj.Years(st.RosterBefore, forecast.MaxYears, before.Remaining.Allocated)
	if err != nil {
		return State{}, err
	}
	yearsAfter, err := b.proj.Years(st.RosterAfter, forecast.MaxYears, afterReport.Remaining.Allocated)
	if err != nil {
		return State{}, err
	}
	for i := range yearsBefore {
		yb, ya := yearsBefore[i], yearsAfter[i]
		st.Forecast = append(st.Forecast, ForecastDelta{
			Index:      yb.Index,
			Label:      yb.Label,
			Before:     yb,
			After:      ya,
			GapBefore:  yb.GapsByGroup[group],
			GapAfter:   ya.GapsByGroup[group],
			SpendDelta: ya.ProjectedSpend - yb.ProjectedSpend,
		})
	}

	hb, ha := BuildHeatmap(st.RosterBefore), BuildHeatmap(st.RosterAfter)
	st.Heatmap = HeatmapDelta{
		Before:    hb,
		After:     ha,
		RedBefore: hb.Count(types.ColorRed),
		RedAfter:  ha.Count(types.ColorRed),
	}
	st.NewRedIntroduced = st.Heatmap.RedAfter > st.Heatmap.RedBefore

	st.Verdict = verdict(afterReport.Guardrail.Status, st.NewRedIntroduced)
	st.Why = b.why(st)
	st.Tradeoffs = b.tradeoffs(st)
	return st, nil
}

func verdict(after types.GuardrailStatus, newRed bool) types.Verdict {
	switch {
	case after == types.StatusOver:
		return types.VerdictBlock
	case after == types.StatusNear || newRed:
		return types.VerdictCaution
	default:
		return types.VerdictProceed
	}
}

func (b *Builder) why(st State) []string {
	out := []string{}
	for _, f := range st.Forecast {
		if f.GapAfter < f.GapBefore {
			out = append(out, fmt.Sprintf("%s gap closes from %d to %d in %s",
				st.Allocation.Group, f.GapBefore, f.GapAfter, f.Label))
			break
		}
	}
	cfg := b.alloc.Config()
	if st.Budget.After.Remaining.Remaining >= cfg.MinRemainingBuffer {
		out = append(out, fmt.Sprintf("Remaining budget stays above the %s buffer (%s left)",
			money.USD(cfg.MinRemainingBuffer), money.USD(st.Budget.After.Remaining.Remaining)))
	}
	if !st.NewRedIntroduced {
		out = append(out, "No new RED risk introduced")
	}
	if len(out) == 0 {
		out = append(out, defaultWhy)
	}
	return out
}

func (b *Builder) tradeoffs(st State) []string {
	out := []string{}
	cfg := b.alloc.Config()
	if st.Allocation.PercentAfter > cfg.WarnPositionPercent {
		out = append(out, fmt.Sprintf("%s allocation at %s nears the %s cap",
			st.Allocation.Group, money.Percent(st.Allocation.PercentAfter), money.Percent(cfg.MaxPositionPercent)))
	}
	if st.Budget.RemainingDelta < 0 {
		out = append(out, fmt.Sprintf("Remaining budget drops by %s", money.USD(-st.Budget.RemainingDelta)))
	}
	if st.NewRedIntroduced {
		out = append(out, fmt.Sprintf("RED risk count rises from %d to %d", st.Heatmap.RedBefore, st.Heatmap.RedAfter))
	}
	if st.Replacement == nil {
		out = append(out, fmt.Sprintf("No replacement candidate in %s; roster grows by one", st.Allocation.Group))
	}
	if len(out) == 0 {
		out = append(out, defaultTradeoff)
	}
	return out
}
