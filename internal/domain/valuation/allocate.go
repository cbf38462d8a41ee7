package valuation

import (
	"math"
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/money"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
)

const eps = 1e-9

// Entry is a scored player waiting for a dollar allocation.
type Entry struct {
	Score      Score
	Position   string
	Role       types.Role
	Confidence float64
}

// Result is the guarded valuation of one player.
type Result struct {
	PlayerID    string     `json:"player_id"`
	Position    string     `json:"position"`
	Role        types.Role `json:"role"`
	TotalScore  float64    `json:"total_score"`
	SharePct    float64    `json:"share_pct"`
	DollarsLow  float64    `json:"dollars_low"`
	DollarsMid  float64    `json:"dollars_mid"`
	DollarsHigh float64    `json:"dollars_high"`
	Confidence  float64    `json:"confidence"`
	Components  Components `json:"components"`
	Capped      bool       `json:"capped,omitempty"`
	Floored     bool       `json:"floored,omitempty"`
}

// InputsFromRelations joins the relation tables into one input per player, in player order.
// Missing usage, grade or role rows fall back to their defaults.
func InputsFromRelations(rel model.Relations) []Input {
	inputs := make([]Input, 0, len(rel.Players))
	for _, p := range rel.Players {
		u := rel.UsageFor(p.ID)
		r := rel.RoleFor(p.ID)
		inputs = append(inputs, Input{
			PlayerID:        p.ID,
			Position:        p.Position,
			Role:            r.Role,
			OverallGrade:    rel.GradeFor(p.ID).OverallGrade,
			Snaps:           u.Snaps,
			LeverageSnaps:   u.LeverageSnaps,
			GamesPlayed:     u.GamesPlayed,
			ReplacementRisk: r.ReplacementRisk,
		})
	}
	return inputs
}

// Value scores every input against the cohort and allocates the pool under the policy guardrails.
func (e *Engine) Value(inputs []Input, p policy.Policy, allocatable float64) []Result {
	if len(inputs) == 0 {
		return []Result{}
	}
	team := TeamTotalSnaps(inputs)
	entries := make([]Entry, len(inputs))
	for i, in := range inputs {
		entries[i] = Entry{
			Score:      e.Score(in, team, p.Weights, p.PositionMultipliers),
			Position:   in.Position,
			Role:       in.Role,
			Confidence: Confidence(in.Snaps, in.GamesPlayed),
		}
	}
	return Allocate(entries, allocatable, p.Guardrails)
}

// Allocate converts raw scores into capped shares and floored dollar ranges.
//
// Shares above the cap are pinned to it and the excess is redistributed across the
// uncapped players in proportion to their raw shares, repeating until nothing exceeds
// the cap. STARTER and ROTATION players below the floor are then raised to it and the
// shortfall is taken from the remaining players in proportion to their dollars. The floor
// never exceeds the cap's dollar amount, and when the floors alone exceed the pool the
// floored players split it evenly.
func Allocate(entries []Entry, allocatable float64, g policy.Guardrails) []Result {
	n := len(entries)
	results := make([]Result, n)
	if n == 0 {
		return results
	}
	if allocatable < 0 {
		allocatable = 0
	}

	total := 0.0
	for _, en := range entries {
		if en.Score.Raw > 0 {
			total += en.Score.Raw
		}
	}
	if total == 0 {
		total = 1
	}
	shares := make([]float64, n)
	for i, en := range entries {
		if en.Score.Raw > 0 {
			shares[i] = en.Score.Raw / total
		}
	}

	shares, capped := capShares(shares, g.MaxSharePercent)

	mids := make([]float64, n)
	for i := range shares {
		mids[i] = shares[i] * allocatable
	}

	var floored []bool
	if allocatable > 0 && g.FloorRotationUSD > 0 {
		floor := g.FloorRotationUSD
		if g.MaxSharePercent > 0 && g.MaxSharePercent < 1 {
			floor = math.Min(floor, g.MaxSharePercent*allocatable)
		}
		mids, floored = applyFloor(entries, mids, floor)
		for i := range mids {
			shares[i] = mids[i] / allocatable
		}
	}

	for i, en := range entries {
		w := BandWidth(en.Confidence)
		results[i] = Result{
			PlayerID:    en.Score.PlayerID,
			Position:    en.Position,
			Role:        en.Role,
			TotalScore:  en.Score.Raw,
			SharePct:    shares[i],
			DollarsLow:  money.Cents(mids[i] * (1 - w)),
			DollarsMid:  money.Cents(mids[i]),
			DollarsHigh: money.Cents(mids[i] * (1 + w)),
			Confidence:  en.Confidence,
			Components:  en.Score.Components,
			Capped:      capped[i],
		}
		if floored != nil {
			results[i].Floored = floored[i]
		}
	}
	return results
}

// capShares pins shares above limit and spreads the excess over the rest.
// When every player is pinned the leftover mass stays unallocated.
func capShares(shares []float64, limit float64) ([]float64, []bool) {
	n := len(shares)
	out := make([]float64, n)
	capped := make([]bool, n)
	copy(out, shares)
	if limit <= 0 || limit >= 1 {
		return out, capped
	}

	for range n + 1 {
		pinned := 0
		freeRaw := 0.0
		for i := range shares {
			if capped[i] {
				pinned++
			} else {
				freeRaw += shares[i]
			}
		}
		freeMass := 1 - float64(pinned)*limit
		if freeMass < 0 {
			freeMass = 0
		}

		changed := false
		for i := range shares {
			if capped[i] {
				out[i] = limit
				continue
			}
			if freeRaw > 0 {
				out[i] = shares[i] / freeRaw * freeMass
			} else {
				out[i] = 0
			}
		}
		for i := range out {
			if !capped[i] && out[i] > limit+eps {
				capped[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return out, capped
}

// applyFloor raises floored roles to floor and deducts the shortfall proportionally.
func applyFloor(entries []Entry, base []float64, floor float64) ([]float64, []bool) {
	n := len(base)
	mids := make([]float64, n)
	floored := make([]bool, n)
	copy(mids, base)

	for range n + 1 {
		shortfall := 0.0
		othersBase := 0.0
		for i := range base {
			if floored[i] {
				shortfall += floor - base[i]
			} else {
				othersBase += base[i]
			}
		}

		for i := range base {
			switch {
			case floored[i]:
				mids[i] = floor
			case othersBase > 0:
				v := base[i] - shortfall*base[i]/othersBase
				if v < 0 {
					v = 0
				}
				mids[i] = v
			default:
				mids[i] = base[i]
			}
		}

		changed := false
		for i, en := range entries {
			if !floored[i] && en.Role.Floored() && mids[i] < floor-eps {
				floored[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	total, k := 0.0, 0
	for i := range base {
		total += base[i]
		if floored[i] {
			k++
		}
	}
	if k > 0 && float64(k)*floor > total+eps {
		for i := range mids {
			if floored[i] {
				mids[i] = total / float64(k)
			} else {
				mids[i] = 0
			}
		}
	}
	return mids, floored
}

// SortByShare orders results by share descending; equal shares keep their input order.
func SortByShare(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SharePct > results[j].SharePct
	})
}
