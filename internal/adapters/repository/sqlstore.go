package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/glebarez/go-sqlite"  // registers the "sqlite" driver
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// SQLStore is a Store backed by database/sql.
type SQLStore struct {
	db     *sql.DB
	sb     sq.StatementBuilderType
	driver string
	logger logger.Logger
}

// OpenSQL opens dsn with driver, migrates the schema and applies the seed options.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	o := newOptions(opts)

	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	switch driver {
	case DriverSQLite:
	case DriverPgx:
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLStore{db: db, sb: sb, driver: driver, logger: o.logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.bootstrap(ctx, o); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) bootstrap(ctx context.Context, o options) error {
	for _, p := range o.policies {
		if err := s.SavePolicy(ctx, p); err != nil {
			return err
		}
	}
	for _, p := range o.pools {
		if err := s.SavePool(ctx, p); err != nil {
			return err
		}
	}
	if !o.seed {
		return nil
	}

	var n int
	query, args, err := s.sb.Select("COUNT(*)").From("players").ToSql()
	if err != nil {
		return err
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return fmt.Errorf("count players: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := s.ImportRelations(ctx, DemoRelations()); err != nil {
		return fmt.Errorf("seed relations: %w", err)
	}
	if err := s.ImportRoster(ctx, DemoRoster()); err != nil {
		return fmt.Errorf("seed roster: %w", err)
	}
	s.logger.Info(ctx, "seeded demo roster", logger.Int("players", len(demoRoster)))
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) observe(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func (s *SQLStore) Relations(ctx context.Context) (model.Relations, error) {
	defer s.observe(time.Now())
	var rel model.Relations

	err := s.query(ctx, s.sb.Select("id", "first_name", "last_name", "position", "position_group", "class_year",
		"grad_year", "height_inches", "weight_lbs", "status", "external_ref").From("players").OrderBy("id"),
		func(rows *sql.Rows) error {
			var p model.Player
			if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Position, &p.PositionGroup, &p.ClassYear,
				&p.GradYear, &p.HeightInches, &p.WeightLbs, &p.Status, &p.ExternalRef); err != nil {
				return err
			}
			rel.Players = append(rel.Players, p)
			return nil
		})
	if err != nil {
		return model.Relations{}, fmt.Errorf("read players: %w", err)
	}

	err = s.query(ctx, s.sb.Select("player_id", "games_played", "snaps", "snaps_offense", "snaps_defense", "snaps_st",
		"leverage_snaps").From("season_usage").OrderBy("player_id"),
		func(rows *sql.Rows) error {
			var u model.SeasonUsage
			if err := rows.Scan(&u.PlayerID, &u.GamesPlayed, &u.Snaps, &u.SnapsOffense, &u.SnapsDefense, &u.SnapsST,
				&u.LeverageSnaps); err != nil {
				return err
			}
			rel.Usage = append(rel.Usage, u)
			return nil
		})
	if err != nil {
		return model.Relations{}, fmt.Errorf("read usage: %w", err)
	}

	err = s.query(ctx, s.sb.Select("player_id", "overall_grade").From("grades").OrderBy("player_id"),
		func(rows *sql.Rows) error {
			var g model.Grade
			if err := rows.Scan(&g.PlayerID, &g.OverallGrade); err != nil {
				return err
			}
			rel.Grades = append(rel.Grades, g)
			return nil
		})
	if err != nil {
		return model.Relations{}, fmt.Errorf("read grades: %w", err)
	}

	err = s.query(ctx, s.sb.Select("player_id", "role", "replacement_risk", "depth_rank").From("roles").OrderBy("player_id"),
		func(rows *sql.Rows) error {
			var (
				r          model.RoleAssignment
				role, risk string
			)
			if err := rows.Scan(&r.PlayerID, &role, &risk, &r.DepthRank); err != nil {
				return err
			}
			r.Role = types.ParseRole(role)
			r.ReplacementRisk = types.ParseReplacementRisk(risk)
			rel.Roles = append(rel.Roles, r)
			return nil
		})
	if err != nil {
		return model.Relations{}, fmt.Errorf("read roles: %w", err)
	}
	return rel, nil
}

func (s *SQLStore) Roster(ctx context.Context) ([]model.RosterPlayer, error) {
	defer s.observe(time.Now())
	var out []model.RosterPlayer
	err := s.query(ctx, s.sb.Select("id", "name", "position", "position_group", "class_year", "grad_year",
		"eligibility_remaining", "nil_band", "rev_share_band", "estimated_cost", "role", "snaps_share",
		"performance_grade", "injury_risk", "transfer_risk", "academics_risk").From("roster").OrderBy("id"),
		func(rows *sql.Rows) error {
			var (
				p    model.RosterPlayer
				role string
			)
			if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.PositionGroup, &p.Year, &p.GradYear,
				&p.EligibilityRemaining, &p.NILBand, &p.RevShareBand, &p.EstimatedCost, &role, &p.SnapsShare,
				&p.PerformanceGrade, &p.Risk.Injury, &p.Risk.Transfer, &p.Risk.Academics); err != nil {
				return err
			}
			p.Role = types.ParseRole(role)
			out = append(out, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Policy(ctx context.Context, id string) (policy.Policy, error) {
	defer s.observe(time.Now())
	query, args, err := s.sb.Select("body").From("policies").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return policy.Policy{}, err
	}
	var body string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return policy.Policy{}, fmt.Errorf("policy %q: %w", id, ErrNotFound)
		}
		return policy.Policy{}, fmt.Errorf("read policy: %w", err)
	}
	var p policy.Policy
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return policy.Policy{}, fmt.Errorf("decode policy %q: %w", id, err)
	}
	return p, nil
}

func (s *SQLStore) SavePolicy(ctx context.Context, p policy.Policy) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	return s.exec(ctx, s.sb.Insert("policies").Columns("id", "body").Values(p.ID, string(body)).
		Suffix(onConflict("id", "body")))
}

func (s *SQLStore) Pool(ctx context.Context, id string) (model.Pool, error) {
	defer s.observe(time.Now())
	query, args, err := s.sb.Select("id", "name", "pool_amount", "reserved_amount").From("pools").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Pool{}, err
	}
	var p model.Pool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.PoolAmount, &p.ReservedAmount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Pool{}, fmt.Errorf("pool %q: %w", id, ErrNotFound)
		}
		return model.Pool{}, fmt.Errorf("read pool: %w", err)
	}
	return p, nil
}

func (s *SQLStore) SavePool(ctx context.Context, p model.Pool) error {
	return s.exec(ctx, s.sb.Insert("pools").Columns("id", "name", "pool_amount", "reserved_amount").
		Values(p.ID, p.Name, p.PoolAmount, p.ReservedAmount).
		Suffix(onConflict("id", "name", "pool_amount", "reserved_amount")))
}

// ReplaceSnapshots runs the delete and every insert in one transaction.
func (s *SQLStore) ReplaceSnapshots(ctx context.Context, poolID, policyID string, rows []model.SnapshotRecord) (err error) {
	defer s.observe(time.Now())
	defer func() {
		if err != nil {
			metrics.RecordSnapshotError()
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := s.sb.Delete("valuation_snapshots").
		Where(sq.Eq{"pool_id": poolID, "policy_id": policyID}).ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}

	if len(rows) > 0 {
		ins := s.sb.Insert("valuation_snapshots").Columns("pool_id", "policy_id", "player_id", "total_score",
			"share_pct", "dollars_low", "dollars_mid", "dollars_high", "confidence")
		for _, r := range rows {
			ins = ins.Values(poolID, policyID, r.PlayerID, r.TotalScore, r.SharePct, r.DollarsLow, r.DollarsMid,
				r.DollarsHigh, r.Confidence)
		}
		query, args, err = ins.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert snapshots: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	metrics.RecordSnapshotWrite(len(rows))
	return nil
}

func (s *SQLStore) Snapshots(ctx context.Context, poolID, policyID string) ([]model.SnapshotRecord, error) {
	defer s.observe(time.Now())
	var out []model.SnapshotRecord
	err := s.query(ctx, s.sb.Select("pool_id", "policy_id", "player_id", "total_score", "share_pct", "dollars_low",
		"dollars_mid", "dollars_high", "confidence").From("valuation_snapshots").
		Where(sq.Eq{"pool_id": poolID, "policy_id": policyID}).
		OrderBy("share_pct DESC", "player_id"),
		func(rows *sql.Rows) error {
			var r model.SnapshotRecord
			if err := rows.Scan(&r.PoolID, &r.PolicyID, &r.PlayerID, &r.TotalScore, &r.SharePct, &r.DollarsLow,
				&r.DollarsMid, &r.DollarsHigh, &r.Confidence); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}
	return out, nil
}

func (s *SQLStore) SaveScenario(ctx context.Context, rec model.ScenarioRecord) error {
	mutations := string(rec.Mutations)
	if mutations == "" {
		mutations = "[]"
	}
	return s.exec(ctx, s.sb.Insert("scenarios").
		Columns("id", "name", "policy_id", "pool_id", "mutations", "created_at").
		Values(rec.ID, rec.Name, rec.PolicyID, rec.PoolID, mutations, rec.CreatedAt.UTC().Format(time.RFC3339Nano)).
		Suffix(onConflict("id", "name", "policy_id", "pool_id", "mutations", "created_at")))
}

func (s *SQLStore) Scenario(ctx context.Context, id string) (model.ScenarioRecord, error) {
	defer s.observe(time.Now())
	query, args, err := s.sb.Select("id", "name", "policy_id", "pool_id", "mutations", "created_at").
		From("scenarios").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.ScenarioRecord{}, err
	}
	var (
		rec                model.ScenarioRecord
		mutations, created string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &rec.Name, &rec.PolicyID, &rec.PoolID, &mutations, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScenarioRecord{}, fmt.Errorf("scenario %q: %w", id, ErrNotFound)
		}
		return model.ScenarioRecord{}, fmt.Errorf("read scenario: %w", err)
	}
	rec.Mutations = json.RawMessage(mutations)
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

// ImportRelations upserts every relation row inside one transaction.
func (s *SQLStore) ImportRelations(ctx context.Context, rel model.Relations) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, p := range rel.Players {
		err = s.execTx(ctx, tx, s.sb.Insert("players").
			Columns("id", "first_name", "last_name", "position", "position_group", "class_year", "grad_year",
				"height_inches", "weight_lbs", "status", "external_ref").
			Values(p.ID, p.FirstName, p.LastName, p.Position, p.PositionGroup, p.ClassYear, p.GradYear,
				p.HeightInches, p.WeightLbs, p.Status, p.ExternalRef).
			Suffix(onConflict("id", "first_name", "last_name", "position", "position_group", "class_year",
				"grad_year", "height_inches", "weight_lbs", "status", "external_ref")))
		if err != nil {
			return fmt.Errorf("upsert player %s: %w", p.ID, err)
		}
	}
	for _, u := range rel.Usage {
		err = s.execTx(ctx, tx, s.sb.Insert("season_usage").
			Columns("player_id", "games_played", "snaps", "snaps_offense", "snaps_defense", "snaps_st", "leverage_snaps").
			Values(u.PlayerID, u.GamesPlayed, u.Snaps, u.SnapsOffense, u.SnapsDefense, u.SnapsST, u.LeverageSnaps).
			Suffix(onConflict("player_id", "games_played", "snaps", "snaps_offense", "snaps_defense", "snaps_st",
				"leverage_snaps")))
		if err != nil {
			return fmt.Errorf("upsert usage %s: %w", u.PlayerID, err)
		}
	}
	for _, g := range rel.Grades {
		err = s.execTx(ctx, tx, s.sb.Insert("grades").Columns("player_id", "overall_grade").
			Values(g.PlayerID, g.OverallGrade).Suffix(onConflict("player_id", "overall_grade")))
		if err != nil {
			return fmt.Errorf("upsert grade %s: %w", g.PlayerID, err)
		}
	}
	for _, r := range rel.Roles {
		err = s.execTx(ctx, tx, s.sb.Insert("roles").Columns("player_id", "role", "replacement_risk", "depth_rank").
			Values(r.PlayerID, string(r.Role), string(r.ReplacementRisk), r.DepthRank).
			Suffix(onConflict("player_id", "role", "replacement_risk", "depth_rank")))
		if err != nil {
			return fmt.Errorf("upsert role %s: %w", r.PlayerID, err)
		}
	}
	return tx.Commit()
}

// ImportRoster upserts roster rows inside one transaction.
func (s *SQLStore) ImportRoster(ctx context.Context, roster []model.RosterPlayer) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	cols := []string{"id", "name", "position", "position_group", "class_year", "grad_year", "eligibility_remaining",
		"nil_band", "rev_share_band", "estimated_cost", "role", "snaps_share", "performance_grade", "injury_risk",
		"transfer_risk", "academics_risk"}
	for _, p := range roster {
		err = s.execTx(ctx, tx, s.sb.Insert("roster").Columns(cols...).
			Values(p.ID, p.Name, p.Position, p.PositionGroup, p.Year, p.GradYear, p.EligibilityRemaining,
				p.NILBand, p.RevShareBand, p.EstimatedCost, string(p.Role), p.SnapsShare, p.PerformanceGrade,
				p.Risk.Injury, p.Risk.Transfer, p.Risk.Academics).
			Suffix(onConflict(cols[0], cols[1:]...)))
		if err != nil {
			return fmt.Errorf("upsert roster %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) query(ctx context.Context, b sq.SelectBuilder, scan func(*sql.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLStore) exec(ctx context.Context, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLStore) execTx(ctx context.Context, tx *sql.Tx, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// onConflict builds an upsert suffix keyed on the first column. SQLite and PostgreSQL share the syntax.
func onConflict(key string, cols ...string) string {
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == key {
			continue
		}
		sets = append(sets, c+" = excluded."+c)
	}
	return "ON CONFLICT (" + key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
