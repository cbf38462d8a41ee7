// Package replacement picks the roster player to release when a recruit joins a position group.
package replacement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
)

// ErrNoCandidate is returned when no player in the group qualifies.
var ErrNoCandidate = fmt.Errorf("replacement candidate %w", model.ErrNotFound)

// Selector narrows candidates in three stages and sorts the survivors.
type Selector struct {
	rules    policy.ReplacementRules
	asOfYear int
}

// New creates a selector. asOfYear anchors the graduation window.
func New(rules policy.ReplacementRules, asOfYear int) *Selector {
	return &Selector{rules: rules, asOfYear: asOfYear}
}

// Candidates returns the ranked survivors of the narrowing stages, best first.
func (s *Selector) Candidates(roster []model.RosterPlayer, group string) []model.RosterPlayer {
	var pool []model.RosterPlayer
	for _, p := range roster {
		if p.SimRemoved || !strings.EqualFold(p.PositionGroup, group) || s.rules.Excludes(p.Role) {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) == 0 {
		return nil
	}

	if graduating := keep(pool, s.graduating); len(graduating) > 0 {
		pool = graduating
	}
	if len(pool) > 1 {
		if depth := keep(pool, s.lowImpactDepth); len(depth) > 0 {
			pool = depth
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.PerformanceGrade != b.PerformanceGrade {
			return a.PerformanceGrade < b.PerformanceGrade
		}
		if a.SnapsShare != b.SnapsShare {
			return a.SnapsShare < b.SnapsShare
		}
		if a.EstimatedCost != b.EstimatedCost {
			return a.EstimatedCost > b.EstimatedCost
		}
		return a.ID < b.ID
	})
	return pool
}

// Select returns the best candidate, or false when the group has none.
func (s *Selector) Select(roster []model.RosterPlayer, group string) (model.RosterPlayer, bool) {
	c := s.Candidates(roster, group)
	if len(c) == 0 {
		return model.RosterPlayer{}, false
	}
	return c[0], true
}

// Suggest is Select with an error for the empty case.
func (s *Selector) Suggest(roster []model.RosterPlayer, group string) (model.RosterPlayer, error) {
	p, ok := s.Select(roster, group)
	if !ok {
		return p, fmt.Errorf("%w in group %s", ErrNoCandidate, group)
	}
	return p, nil
}

func (s *Selector) graduating(p model.RosterPlayer) bool {
	return p.GradYear > 0 && p.GradYear-s.asOfYear <= s.rules.GraduationWindowYears
}

func (s *Selector) lowImpactDepth(p model.RosterPlayer) bool {
	return p.Role != types.RoleStarter &&
		p.PerformanceGrade <= s.rules.MaxDepthGrade &&
		p.SnapsShare <= s.rules.MaxDepthSnapsShare
}

func keep(players []model.RosterPlayer, pred func(model.RosterPlayer) bool) []model.RosterPlayer {
	var out []model.RosterPlayer
	for _, p := range players {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
