// Package repository is the record source and sink of the valuation engines.
package repository

import (
	"context"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
)

// Store provides read/write access to roster relations, policies, pools, scenarios and snapshots.
type Store interface {
	// Relations reads the four per-player relations in one pass.
	Relations(ctx context.Context) (model.Relations, error)
	// Roster returns the budget/forecast view of the roster.
	Roster(ctx context.Context) ([]model.RosterPlayer, error)

	// Policy returns ErrNotFound if id is unknown.
	Policy(ctx context.Context, id string) (policy.Policy, error)
	// Pool returns ErrNotFound if id is unknown.
	Pool(ctx context.Context, id string) (model.Pool, error)
	SavePolicy(ctx context.Context, p policy.Policy) error
	SavePool(ctx context.Context, p model.Pool) error

	// ReplaceSnapshots deletes the prior snapshots of (poolID, policyID) and inserts rows,
	// atomically. Repeating a call with the same rows leaves the same state.
	ReplaceSnapshots(ctx context.Context, poolID, policyID string, rows []model.SnapshotRecord) error
	// Snapshots returns the persisted rows of (poolID, policyID) ordered by share descending.
	Snapshots(ctx context.Context, poolID, policyID string) ([]model.SnapshotRecord, error)

	SaveScenario(ctx context.Context, rec model.ScenarioRecord) error
	// Scenario returns ErrNotFound if id is unknown.
	Scenario(ctx context.Context, id string) (model.ScenarioRecord, error)

	// ImportRelations upserts relation rows by player id.
	ImportRelations(ctx context.Context, rel model.Relations) error
	// ImportRoster upserts roster rows by id.
	ImportRoster(ctx context.Context, roster []model.RosterPlayer) error

	Close() error
}
