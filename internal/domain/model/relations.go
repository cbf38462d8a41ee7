// Package model contains the plain records passed between the record source and the engines.
package model

import "github.com/okian/gridiron/internal/domain/types"

// Defaults applied to rows created for a player that has none.
const (
	DefaultOverallGrade = 60.0
	DefaultRole         = types.RoleDepth
	DefaultRisk         = types.RiskMed
)

// Player is the identity row of the players relation.
type Player struct {
	ID            string `json:"id"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Position      string `json:"position"`
	PositionGroup string `json:"position_group"`
	ClassYear     string `json:"class_year,omitempty"`
	GradYear      int    `json:"grad_year,omitempty"`
	HeightInches  int    `json:"height_inches,omitempty"`
	WeightLbs     int    `json:"weight_lbs,omitempty"`
	Status        string `json:"status,omitempty"`
	ExternalRef   string `json:"external_ref,omitempty"`
}

// Name joins first and last name.
func (p Player) Name() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// SeasonUsage is a player's snap usage for the season.
type SeasonUsage struct {
	PlayerID      string `json:"player_id"`
	GamesPlayed   int    `json:"games_played"`
	Snaps         int    `json:"snaps"`
	SnapsOffense  int    `json:"snaps_offense"`
	SnapsDefense  int    `json:"snaps_defense"`
	SnapsST       int    `json:"snaps_st"`
	LeverageSnaps int    `json:"leverage_snaps"`
}

// Grade is a player's overall evaluation (0-100).
type Grade struct {
	PlayerID     string  `json:"player_id"`
	OverallGrade float64 `json:"overall_grade"`
}

// RoleAssignment is a player's depth role and replacement risk.
type RoleAssignment struct {
	PlayerID        string                `json:"player_id"`
	Role            types.Role            `json:"role"`
	ReplacementRisk types.ReplacementRisk `json:"replacement_risk"`
	DepthRank       int                   `json:"depth_rank"`
}

// DefaultUsage returns the zero usage row for a player.
func DefaultUsage(playerID string) SeasonUsage {
	return SeasonUsage{PlayerID: playerID}
}

// DefaultGrade returns the grade row used when none is recorded.
func DefaultGrade(playerID string) Grade {
	return Grade{PlayerID: playerID, OverallGrade: DefaultOverallGrade}
}

// DefaultRoleAssignment returns the role row used when none is recorded.
func DefaultRoleAssignment(playerID string) RoleAssignment {
	return RoleAssignment{PlayerID: playerID, Role: DefaultRole, ReplacementRisk: DefaultRisk}
}

// Relations bundles the four per-player relations read for one computation.
type Relations struct {
	Players []Player         `json:"players"`
	Usage   []SeasonUsage    `json:"usage"`
	Grades  []Grade          `json:"grades"`
	Roles   []RoleAssignment `json:"roles"`
}

// Clone returns a deep copy. Rows are value types so copying the slices is enough.
func (r Relations) Clone() Relations {
	return Relations{
		Players: append([]Player(nil), r.Players...),
		Usage:   append([]SeasonUsage(nil), r.Usage...),
		Grades:  append([]Grade(nil), r.Grades...),
		Roles:   append([]RoleAssignment(nil), r.Roles...),
	}
}

// HasPlayer reports whether id is present in the players relation.
func (r Relations) HasPlayer(id string) bool {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return true
		}
	}
	return false
}

// UsageFor returns the usage row for id or the default row.
func (r Relations) UsageFor(id string) SeasonUsage {
	for _, u := range r.Usage {
		if u.PlayerID == id {
			return u
		}
	}
	return DefaultUsage(id)
}

// GradeFor returns the grade row for id or the default row.
func (r Relations) GradeFor(id string) Grade {
	for _, g := range r.Grades {
		if g.PlayerID == id {
			return g
		}
	}
	return DefaultGrade(id)
}

// RoleFor returns the role row for id or the default row.
func (r Relations) RoleFor(id string) RoleAssignment {
	for _, ra := range r.Roles {
		if ra.PlayerID == id {
			return ra
		}
	}
	return DefaultRoleAssignment(id)
}

// Pool is a fixed monetary pool to allocate across a roster.
type Pool struct {
	ID             string  `json:"id"`
	Name           string  `json:"name,omitempty"`
	PoolAmount     float64 `json:"pool_amount"`
	ReservedAmount float64 `json:"reserved_amount"`
}

// Allocatable is the pool less the reserve, floored at zero.
func (p Pool) Allocatable() float64 {
	a := p.PoolAmount - p.ReservedAmount
	if a < 0 {
		return 0
	}
	return a
}
