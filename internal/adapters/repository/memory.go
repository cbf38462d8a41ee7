package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/pkg/metrics"
)

type snapshotKey struct{ pool, policy string }

// MemoryStore is an in-process Store. Reads return copies.
type MemoryStore struct {
	mu        sync.RWMutex
	rel       model.Relations
	roster    []model.RosterPlayer
	policies  map[string]policy.Policy
	pools     map[string]model.Pool
	scenarios map[string]model.ScenarioRecord
	snapshots map[snapshotKey][]model.SnapshotRecord
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := newOptions(opts)
	s := &MemoryStore{
		policies:  make(map[string]policy.Policy),
		pools:     make(map[string]model.Pool),
		scenarios: make(map[string]model.ScenarioRecord),
		snapshots: make(map[snapshotKey][]model.SnapshotRecord),
	}
	if o.seed {
		s.rel = DemoRelations()
		s.roster = DemoRoster()
	}
	for _, p := range o.policies {
		s.policies[p.ID] = p
	}
	for _, p := range o.pools {
		s.pools[p.ID] = p
	}
	return s
}

func (s *MemoryStore) Relations(_ context.Context) (model.Relations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rel.Clone(), nil
}

func (s *MemoryStore) Roster(_ context.Context) ([]model.RosterPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneRoster(s.roster), nil
}

func (s *MemoryStore) Policy(_ context.Context, id string) (policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[id]
	if !ok {
		return policy.Policy{}, fmt.Errorf("policy %q: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) Pool(_ context.Context, id string) (model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[id]
	if !ok {
		return model.Pool{}, fmt.Errorf("pool %q: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) SavePolicy(_ context.Context, p policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.ID] = p
	return nil
}

func (s *MemoryStore) SavePool(_ context.Context, p model.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.ID] = p
	return nil
}

func (s *MemoryStore) ReplaceSnapshots(_ context.Context, poolID, policyID string, rows []model.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshotKey{poolID, policyID}] = append([]model.SnapshotRecord(nil), rows...)
	metrics.RecordSnapshotWrite(len(rows))
	return nil
}

func (s *MemoryStore) Snapshots(_ context.Context, poolID, policyID string) ([]model.SnapshotRecord, error) {
	s.mu.RLock()
	rows := append([]model.SnapshotRecord(nil), s.snapshots[snapshotKey{poolID, policyID}]...)
	s.mu.RUnlock()
	sortSnapshots(rows)
	return rows, nil
}

func (s *MemoryStore) SaveScenario(_ context.Context, rec model.ScenarioRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Scenario(_ context.Context, id string) (model.ScenarioRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.scenarios[id]
	if !ok {
		return model.ScenarioRecord{}, fmt.Errorf("scenario %q: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (s *MemoryStore) ImportRelations(_ context.Context, rel model.Relations) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rel.Players = upsert(s.rel.Players, rel.Players, func(p model.Player) string { return p.ID })
	s.rel.Usage = upsert(s.rel.Usage, rel.Usage, func(u model.SeasonUsage) string { return u.PlayerID })
	s.rel.Grades = upsert(s.rel.Grades, rel.Grades, func(g model.Grade) string { return g.PlayerID })
	s.rel.Roles = upsert(s.rel.Roles, rel.Roles, func(r model.RoleAssignment) string { return r.PlayerID })
	return nil
}

func (s *MemoryStore) ImportRoster(_ context.Context, roster []model.RosterPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = upsert(s.roster, roster, func(p model.RosterPlayer) string { return p.ID })
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// upsert replaces rows of dst sharing a key with src and appends the rest, keeping dst order.
func upsert[T any](dst, src []T, key func(T) string) []T {
	index := make(map[string]int, len(dst))
	for i, row := range dst {
		index[key(row)] = i
	}
	for _, row := range src {
		if i, ok := index[key(row)]; ok {
			dst[i] = row
			continue
		}
		index[key(row)] = len(dst)
		dst = append(dst, row)
	}
	return dst
}

func sortSnapshots(rows []model.SnapshotRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SharePct != rows[j].SharePct {
			return rows[i].SharePct > rows[j].SharePct
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
}
