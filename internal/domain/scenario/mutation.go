package scenario

import (
	"fmt"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
)

// Kind tags a mutation variant.
type Kind string

// Mutation kinds.
const (
	KindAddPlayer    Kind = "ADD_PLAYER"
	KindRemovePlayer Kind = "REMOVE_PLAYER"
	KindUpdateUsage  Kind = "UPDATE_USAGE"
	KindUpdateGrade  Kind = "UPDATE_GRADE"
	KindUpdateRole   Kind = "UPDATE_ROLE"
)

// Mutation is one step of a scenario. Implementations are AddPlayer, RemovePlayer,
// UpdateUsage, UpdateGrade and UpdateRole.
type Mutation interface {
	Kind() Kind
	Validate() error
	apply(rel *model.Relations) error
}

// UsagePatch overrides usage fields; nil fields keep their prior value.
type UsagePatch struct {
	GamesPlayed   *int `json:"games_played,omitempty"`
	Snaps         *int `json:"snaps,omitempty"`
	SnapsOffense  *int `json:"snaps_offense,omitempty"`
	SnapsDefense  *int `json:"snaps_defense,omitempty"`
	SnapsST       *int `json:"snaps_st,omitempty"`
	LeverageSnaps *int `json:"leverage_snaps,omitempty"`
}

// Validate rejects negative counts.
func (p UsagePatch) Validate() error {
	fields := []struct {
		name string
		v    *int
	}{
		{"games_played", p.GamesPlayed},
		{"snaps", p.Snaps},
		{"snaps_offense", p.SnapsOffense},
		{"snaps_defense", p.SnapsDefense},
		{"snaps_st", p.SnapsST},
		{"leverage_snaps", p.LeverageSnaps},
	}
	for _, f := range fields {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidMutation, f.name)
		}
	}
	return nil
}

func (p UsagePatch) merge(u *model.SeasonUsage) {
	setInt(&u.GamesPlayed, p.GamesPlayed)
	setInt(&u.Snaps, p.Snaps)
	setInt(&u.SnapsOffense, p.SnapsOffense)
	setInt(&u.SnapsDefense, p.SnapsDefense)
	setInt(&u.SnapsST, p.SnapsST)
	setInt(&u.LeverageSnaps, p.LeverageSnaps)
}

// GradePatch overrides the overall grade.
type GradePatch struct {
	OverallGrade *float64 `json:"overall_grade,omitempty"`
}

// Validate requires a grade in [0, 100].
func (p GradePatch) Validate() error {
	if p.OverallGrade != nil && (*p.OverallGrade < 0 || *p.OverallGrade > 100) {
		return fmt.Errorf("%w: overall_grade must be in [0, 100]", ErrInvalidMutation)
	}
	return nil
}

func (p GradePatch) merge(g *model.Grade) {
	if p.OverallGrade != nil {
		g.OverallGrade = *p.OverallGrade
	}
}

// RolePatch overrides role fields. Values are normalized by the type parsers.
type RolePatch struct {
	Role            *types.Role            `json:"role,omitempty"`
	ReplacementRisk *types.ReplacementRisk `json:"replacement_risk,omitempty"`
	DepthRank       *int                   `json:"depth_rank,omitempty"`
}

// Validate rejects a negative depth rank.
func (p RolePatch) Validate() error {
	if p.DepthRank != nil && *p.DepthRank < 0 {
		return fmt.Errorf("%w: depth_rank must be >= 0", ErrInvalidMutation)
	}
	return nil
}

func (p RolePatch) merge(r *model.RoleAssignment) {
	if p.Role != nil {
		r.Role = types.ParseRole(string(*p.Role))
	}
	if p.ReplacementRisk != nil {
		r.ReplacementRisk = types.ParseReplacementRisk(string(*p.ReplacementRisk))
	}
	setInt(&r.DepthRank, p.DepthRank)
}

// AddPlayer appends a player with default rows merged with the optional overrides.
type AddPlayer struct {
	Player model.Player `json:"player"`
	Usage  *UsagePatch  `json:"usage,omitempty"`
	Grade  *GradePatch  `json:"grade,omitempty"`
	Role   *RolePatch   `json:"role,omitempty"`
}

// NewAddPlayer builds a validated ADD_PLAYER mutation.
func NewAddPlayer(p model.Player, usage *UsagePatch, grade *GradePatch, role *RolePatch) (AddPlayer, error) {
	m := AddPlayer{Player: p, Usage: usage, Grade: grade, Role: role}
	return m, m.Validate()
}

// Kind implements Mutation.
func (AddPlayer) Kind() Kind { return KindAddPlayer }

// Validate implements Mutation.
func (m AddPlayer) Validate() error {
	if m.Player.ID == "" {
		return fmt.Errorf("%w: ADD_PLAYER requires a player id", ErrInvalidMutation)
	}
	if m.Usage != nil {
		if err := m.Usage.Validate(); err != nil {
			return err
		}
	}
	if m.Grade != nil {
		if err := m.Grade.Validate(); err != nil {
			return err
		}
	}
	if m.Role != nil {
		return m.Role.Validate()
	}
	return nil
}

func (m AddPlayer) apply(rel *model.Relations) error {
	id := m.Player.ID
	if rel.HasPlayer(id) {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}
	rel.Players = append(rel.Players, m.Player)

	u := model.DefaultUsage(id)
	if m.Usage != nil {
		m.Usage.merge(&u)
	}
	g := model.DefaultGrade(id)
	if m.Grade != nil {
		m.Grade.merge(&g)
	}
	r := model.DefaultRoleAssignment(id)
	if m.Role != nil {
		m.Role.merge(&r)
	}
	removeRows(rel, id, false)
	rel.Usage = append(rel.Usage, u)
	rel.Grades = append(rel.Grades, g)
	rel.Roles = append(rel.Roles, r)
	return nil
}

// RemovePlayer deletes a player and every row that references it. Removing an
// absent player is a no-op.
type RemovePlayer struct {
	PlayerID string `json:"player_id"`
}

// NewRemovePlayer builds a validated REMOVE_PLAYER mutation.
func NewRemovePlayer(playerID string) (RemovePlayer, error) {
	m := RemovePlayer{PlayerID: playerID}
	return m, m.Validate()
}

// Kind implements Mutation.
func (RemovePlayer) Kind() Kind { return KindRemovePlayer }

// Validate implements Mutation.
func (m RemovePlayer) Validate() error {
	if m.PlayerID == "" {
		return fmt.Errorf("%w: REMOVE_PLAYER requires a player id", ErrInvalidMutation)
	}
	return nil
}

func (m RemovePlayer) apply(rel *model.Relations) error {
	removeRows(rel, m.PlayerID, true)
	return nil
}

// UpdateUsage merges a usage patch onto a player's row.
type UpdateUsage struct {
	PlayerID string     `json:"player_id"`
	Patch    UsagePatch `json:"patch"`
}

// NewUpdateUsage builds a validated UPDATE_USAGE mutation.
func NewUpdateUsage(playerID string, patch UsagePatch) (UpdateUsage, error) {
	m := UpdateUsage{PlayerID: playerID, Patch: patch}
	return m, m.Validate()
}

// Kind implements Mutation.
func (UpdateUsage) Kind() Kind { return KindUpdateUsage }

// Validate implements Mutation.
func (m UpdateUsage) Validate() error {
	if m.PlayerID == "" {
		return fmt.Errorf("%w: UPDATE_USAGE requires a player id", ErrInvalidMutation)
	}
	return m.Patch.Validate()
}

func (m UpdateUsage) apply(rel *model.Relations) error {
	if !rel.HasPlayer(m.PlayerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, m.PlayerID)
	}
	for i := range rel.Usage {
		if rel.Usage[i].PlayerID == m.PlayerID {
			m.Patch.merge(&rel.Usage[i])
			return nil
		}
	}
	u := model.DefaultUsage(m.PlayerID)
	m.Patch.merge(&u)
	rel.Usage = append(rel.Usage, u)
	return nil
}

// UpdateGrade merges a grade patch onto a player's row.
type UpdateGrade struct {
	PlayerID string     `json:"player_id"`
	Patch    GradePatch `json:"patch"`
}

// NewUpdateGrade builds a validated UPDATE_GRADE mutation.
func NewUpdateGrade(playerID string, patch GradePatch) (UpdateGrade, error) {
	m := UpdateGrade{PlayerID: playerID, Patch: patch}
	return m, m.Validate()
}

// Kind implements Mutation.
func (UpdateGrade) Kind() Kind { return KindUpdateGrade }

// Validate implements Mutation.
func (m UpdateGrade) Validate() error {
	if m.PlayerID == "" {
		return fmt.Errorf("%w: UPDATE_GRADE requires a player id", ErrInvalidMutation)
	}
	return m.Patch.Validate()
}

func (m UpdateGrade) apply(rel *model.Relations) error {
	if !rel.HasPlayer(m.PlayerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, m.PlayerID)
	}
	for i := range rel.Grades {
		if rel.Grades[i].PlayerID == m.PlayerID {
			m.Patch.merge(&rel.Grades[i])
			return nil
		}
	}
	g := model.DefaultGrade(m.PlayerID)
	m.Patch.merge(&g)
	rel.Grades = append(rel.Grades, g)
	return nil
}

// UpdateRole merges a role patch onto a player's row.
type UpdateRole struct {
	PlayerID string    `json:"player_id"`
	Patch    RolePatch `json:"patch"`
}

// NewUpdateRole builds a validated UPDATE_ROLE mutation.
func NewUpdateRole(playerID string, patch RolePatch) (UpdateRole, error) {
	m := UpdateRole{PlayerID: playerID, Patch: patch}
	return m, m.Validate()
}

// Kind implements Mutation.
func (UpdateRole) Kind() Kind { return KindUpdateRole }

// Validate implements Mutation.
func (m UpdateRole) Validate() error {
	if m.PlayerID == "" {
		return fmt.Errorf("%w: UPDATE_ROLE requires a player id", ErrInvalidMutation)
	}
	return m.Patch.Validate()
}

func (m UpdateRole) apply(rel *model.Relations) error {
	if !rel.HasPlayer(m.PlayerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, m.PlayerID)
	}
	for i := range rel.Roles {
		if rel.Roles[i].PlayerID == m.PlayerID {
			m.Patch.merge(&rel.Roles[i])
			return nil
		}
	}
	r := model.DefaultRoleAssignment(m.PlayerID)
	m.Patch.merge(&r)
	rel.Roles = append(rel.Roles, r)
	return nil
}

// Apply folds mutations in order over a deep copy of baseline. The baseline is never modified.
func Apply(baseline model.Relations, mutations []Mutation) (model.Relations, error) {
	rel := baseline.Clone()
	for i, m := range mutations {
		if m == nil {
			return model.Relations{}, fmt.Errorf("%w: mutation %d is nil", ErrInvalidMutation, i)
		}
		if err := m.Validate(); err != nil {
			return model.Relations{}, fmt.Errorf("mutation %d: %w", i, err)
		}
		if err := m.apply(&rel); err != nil {
			return model.Relations{}, fmt.Errorf("mutation %d (%s): %w", i, m.Kind(), err)
		}
	}
	return rel, nil
}

// removeRows drops rows for id, and the player row itself when withPlayer is set.
func removeRows(rel *model.Relations, id string, withPlayer bool) {
	if withPlayer {
		rel.Players = filter(rel.Players, func(p model.Player) bool { return p.ID != id })
	}
	rel.Usage = filter(rel.Usage, func(u model.SeasonUsage) bool { return u.PlayerID != id })
	rel.Grades = filter(rel.Grades, func(g model.Grade) bool { return g.PlayerID != id })
	rel.Roles = filter(rel.Roles, func(r model.RoleAssignment) bool { return r.PlayerID != id })
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
