// Package forecast projects roster attrition and spend for the next few seasons.
//
// Every year is computed independently from the same current roster. Transfer
// departures are expected values rounded per position group, so results are
// deterministic.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/money"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
)

// MaxYears is the longest supported horizon.
const MaxYears = 3

// Driver thresholds.
const (
	largeClassThreshold    = 5
	transferWaveThreshold  = 2
	startersLeavingTrigger = 0
)

// Departure is one player expected to leave.
type Departure struct {
	PlayerID      string                `json:"player_id"`
	Name          string                `json:"name"`
	PositionGroup string                `json:"position_group"`
	Role          types.Role            `json:"role"`
	Reason        types.DepartureReason `json:"reason"`
	Probability   float64               `json:"probability"`
}

// Year is the projection for one year offset.
type Year struct {
	Index              int            `json:"index"`
	Label              string         `json:"label"`
	Season             int            `json:"season"`
	ProjectedSpend     float64        `json:"projected_spend"`
	ReturningCount     int            `json:"returning_count"`
	ExpectedDepartures int            `json:"expected_departures"`
	GraduatingCount    int            `json:"graduating_count"`
	TransferCount      int            `json:"transfer_count"`
	StartersLeaving    int            `json:"starters_leaving"`
	Departures         []Departure    `json:"departures"`
	GapsByGroup        map[string]int `json:"gaps_by_group"`
	Notes              []string       `json:"notes"`
	Drivers            []string       `json:"drivers"`
}

// TotalGap sums the headcount gaps across groups.
func (y Year) TotalGap() int {
	n := 0
	for _, g := range y.GapsByGroup {
		n += g
	}
	return n
}

// Projector builds forecast years from settings.
type Projector struct {
	cfg policy.ForecastConfig
}

// New creates a projector.
func New(cfg policy.ForecastConfig) *Projector {
	return &Projector{cfg: cfg}
}

// Config returns the projector settings.
func (p *Projector) Config() policy.ForecastConfig {
	return p.cfg
}

// Years projects offsets 1..n.
func (p *Projector) Years(roster []model.RosterPlayer, n int, currentAllocated float64) ([]Year, error) {
	if n < 1 || n > MaxYears {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidYear, n)
	}
	out := make([]Year, 0, n)
	for i := 1; i <= n; i++ {
		y, err := p.Year(roster, i, currentAllocated)
		if err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, nil
}

// Year projects a single offset from the current roster.
func (p *Projector) Year(roster []model.RosterPlayer, yearIndex int, currentAllocated float64) (Year, error) {
	if yearIndex < 1 || yearIndex > MaxYears {
		return Year{}, fmt.Errorf("%w: got %d", ErrInvalidYear, yearIndex)
	}
	season := p.cfg.AsOfYear + yearIndex
	y := Year{
		Index:       yearIndex,
		Label:       fmt.Sprintf("Y+%d (%d)", yearIndex, season),
		Season:      season,
		Departures:  []Departure{},
		GapsByGroup: map[string]int{},
		Notes:       []string{},
		Drivers:     []string{},
	}
	y.ProjectedSpend = money.Dollars(currentAllocated * math.Pow(1+p.cfg.InflationRate, float64(yearIndex)))

	active := model.Active(roster)
	staying := make(map[string][]model.RosterPlayer)
	probSum := make(map[string]float64)
	for _, pl := range active {
		if pl.GradYear > 0 && pl.GradYear <= season {
			y.GraduatingCount++
			if pl.Role == types.RoleStarter {
				y.StartersLeaving++
			}
			y.Departures = append(y.Departures, departure(pl, types.ReasonGraduation, 1))
			continue
		}
		staying[pl.PositionGroup] = append(staying[pl.PositionGroup], pl)
		probSum[pl.PositionGroup] += p.cfg.TransferProbability(pl.RiskColor, pl.Role)
	}

	groups := sortedKeys(staying)
	transfersByGroup := make(map[string]int, len(groups))
	for _, g := range groups {
		k := int(math.Round(probSum[g]))
		transfersByGroup[g] = k
		y.TransferCount += k
		for _, pl := range p.likelyTransfers(staying[g], k) {
			if pl.Role == types.RoleStarter {
				y.StartersLeaving++
			}
			y.Departures = append(y.Departures, departure(pl, types.ReasonTransfer, p.cfg.TransferProbability(pl.RiskColor, pl.Role)))
		}
	}

	y.ExpectedDepartures = y.GraduatingCount + y.TransferCount
	returning := len(active) - y.GraduatingCount - y.TransferCount
	y.ReturningCount = max(returning, 0)

	for _, g := range sortedKeys(p.cfg.TargetHeadcount) {
		target := p.cfg.TargetHeadcount[g]
		current := max(len(staying[g])-transfersByGroup[g], 0)
		if current < target {
			y.GapsByGroup[g] = target - current
		}
	}

	y.Notes = p.notes(y)
	y.Drivers = drivers(y)
	return y, nil
}

// likelyTransfers picks the k most likely leavers, highest probability first then by id.
func (p *Projector) likelyTransfers(players []model.RosterPlayer, k int) []model.RosterPlayer {
	if k <= 0 {
		return nil
	}
	ranked := append([]model.RosterPlayer(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi := p.cfg.TransferProbability(ranked[i].RiskColor, ranked[i].Role)
		pj := p.cfg.TransferProbability(ranked[j].RiskColor, ranked[j].Role)
		if pi != pj {
			return pi > pj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

func (p *Projector) notes(y Year) []string {
	notes := []string{}
	if y.GraduatingCount > 0 {
		notes = append(notes, fmt.Sprintf("%d graduating by %d", y.GraduatingCount, y.Season))
	}
	if y.StartersLeaving > 0 {
		notes = append(notes, fmt.Sprintf("%d starters leaving", y.StartersLeaving))
	}
	if y.TransferCount > 0 {
		notes = append(notes, fmt.Sprintf("~%d expected transfers", y.TransferCount))
	}
	if len(y.GapsByGroup) > 0 {
		parts := make([]string, 0, len(y.GapsByGroup))
		for _, g := range sortedKeys(y.GapsByGroup) {
			parts = append(parts, fmt.Sprintf("%s -%d", g, y.GapsByGroup[g]))
		}
		notes = append(notes, "Gaps: "+strings.Join(parts, ", "))
	}
	if p.cfg.InflationRate > 0 {
		notes = append(notes, fmt.Sprintf("Spend projected at %s with %s annual inflation",
			money.USD(y.ProjectedSpend), money.Percent(p.cfg.InflationRate)))
	}
	return notes
}

func drivers(y Year) []string {
	out := []string{}
	if y.GraduatingCount > largeClassThreshold {
		out = append(out, fmt.Sprintf("Large graduating class (%d)", y.GraduatingCount))
	}
	if y.TransferCount > transferWaveThreshold {
		out = append(out, fmt.Sprintf("Elevated transfer exposure (%d)", y.TransferCount))
	}
	if y.StartersLeaving > startersLeavingTrigger {
		out = append(out, fmt.Sprintf("Starter turnover (%d)", y.StartersLeaving))
	}
	return out
}

func departure(p model.RosterPlayer, reason types.DepartureReason, prob float64) Departure {
	return Departure{
		PlayerID:      p.ID,
		Name:          p.Name,
		PositionGroup: p.PositionGroup,
		Role:          p.Role,
		Reason:        reason,
		Probability:   money.Round(prob, 4),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
