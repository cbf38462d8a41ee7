package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var testPool = model.Pool{ID: "pool-2026", Name: "2026 revenue share", PoolAmount: 5_000_000, ReservedAmount: 250_000}

func stores(t *testing.T) map[string]func() repository.Store {
	return map[string]func() repository.Store{
		"memory": func() repository.Store {
			return repository.NewMemoryStore(
				repository.WithSeed(true),
				repository.WithPolicy(policy.Default()),
				repository.WithPool(testPool),
			)
		},
		"sqlite": func() repository.Store {
			path := filepath.Join(t.TempDir(), "gridiron.db")
			s, err := repository.OpenSQL(context.Background(), repository.DriverSQLite, path,
				repository.WithSeed(true),
				repository.WithPolicy(policy.Default()),
				repository.WithPool(testPool),
			)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		},
	}
}

func TestStores(t *testing.T) {
	for name, open := range stores(t) {
		Convey("Given a seeded "+name+" store", t, func() {
			ctx := context.Background()
			s := open()
			defer s.Close()

			Convey("When reading the relations", func() {
				rel, err := s.Relations(ctx)
				So(err, ShouldBeNil)

				Convey("Then every seeded player has all four rows", func() {
					So(rel.Players, ShouldHaveLength, 24)
					So(rel.Usage, ShouldHaveLength, 24)
					So(rel.Grades, ShouldHaveLength, 24)
					So(rel.Roles, ShouldHaveLength, 24)
					So(rel.RoleFor("qb1").Role, ShouldEqual, types.RoleStarter)
					So(rel.RoleFor("qb1").ReplacementRisk, ShouldEqual, types.RiskHigh)
					So(rel.UsageFor("qb1").Snaps, ShouldEqual, 820)
				})
			})

			Convey("When reading the roster", func() {
				roster, err := s.Roster(ctx)
				So(err, ShouldBeNil)
				So(roster, ShouldHaveLength, 24)
				for _, p := range roster {
					if p.ID == "ol4" {
						So(p.GradYear, ShouldEqual, 2026)
						So(p.SnapsShare, ShouldEqual, 15)
						So(p.Role, ShouldEqual, types.RoleDepth)
					}
				}
			})

			Convey("When looking up the configured policy and pool", func() {
				p, err := s.Policy(ctx, "default")
				So(err, ShouldBeNil)
				So(p.Guardrails.MaxSharePercent, ShouldEqual, 0.15)
				So(p.PositionMultipliers.For("QB"), ShouldEqual, 1.35)

				pool, err := s.Pool(ctx, "pool-2026")
				So(err, ShouldBeNil)
				So(pool.Allocatable(), ShouldEqual, 4_750_000)
			})

			Convey("When the policy, pool or scenario is unknown", func() {
				_, err := s.Policy(ctx, "missing")
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
				_, err = s.Pool(ctx, "missing")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = s.Scenario(ctx, "missing")
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})

			Convey("When snapshots are replaced twice", func() {
				first := []model.SnapshotRecord{
					{PlayerID: "qb1", SharePct: 0.15, DollarsMid: 712_500},
					{PlayerID: "wr1", SharePct: 0.10, DollarsMid: 475_000},
				}
				second := []model.SnapshotRecord{
					{PlayerID: "db1", SharePct: 0.12, DollarsMid: 570_000},
				}
				So(s.ReplaceSnapshots(ctx, "pool-2026", "default", first), ShouldBeNil)
				So(s.ReplaceSnapshots(ctx, "pool-2026", "default", second), ShouldBeNil)
				So(s.ReplaceSnapshots(ctx, "pool-2026", "other", first), ShouldBeNil)

				Convey("Then only the latest rows remain for that pair", func() {
					rows, err := s.Snapshots(ctx, "pool-2026", "default")
					So(err, ShouldBeNil)
					So(rows, ShouldHaveLength, 1)
					So(rows[0].PlayerID, ShouldEqual, "db1")
				})

				Convey("Then other pairs are untouched and ordered by share", func() {
					rows, err := s.Snapshots(ctx, "pool-2026", "other")
					So(err, ShouldBeNil)
					So(rows, ShouldHaveLength, 2)
					So(rows[0].PlayerID, ShouldEqual, "qb1")
				})
			})

			Convey("When a scenario is saved", func() {
				rec := model.ScenarioRecord{
					ID:        "scn-1",
					Name:      "Lose the starting QB",
					PolicyID:  "default",
					PoolID:    "pool-2026",
					Mutations: json.RawMessage(`[{"type":"REMOVE_PLAYER","player_id":"qb1"}]`),
					CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				}
				So(s.SaveScenario(ctx, rec), ShouldBeNil)

				got, err := s.Scenario(ctx, "scn-1")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, rec.Name)
				So(string(got.Mutations), ShouldEqual, string(rec.Mutations))
				So(got.CreatedAt.Equal(rec.CreatedAt), ShouldBeTrue)
			})

			Convey("When importing rows for existing and new players", func() {
				err := s.ImportRelations(ctx, model.Relations{
					Players: []model.Player{{ID: "qb1", FirstName: "Cole", LastName: "Brennan", Position: "QB", PositionGroup: "QB"},
						{ID: "new1", Position: "LB", PositionGroup: "LB"}},
					Grades: []model.Grade{{PlayerID: "qb1", OverallGrade: 90}},
				})
				So(err, ShouldBeNil)
				So(s.ImportRoster(ctx, []model.RosterPlayer{{ID: "new1", Name: "New Guy", Position: "LB", PositionGroup: "LB", Role: types.RoleDepth}}), ShouldBeNil)

				Convey("Then existing rows are updated and new ones added", func() {
					rel, err := s.Relations(ctx)
					So(err, ShouldBeNil)
					So(rel.Players, ShouldHaveLength, 25)
					So(rel.GradeFor("qb1").OverallGrade, ShouldEqual, 90)
					roster, err := s.Roster(ctx)
					So(err, ShouldBeNil)
					So(roster, ShouldHaveLength, 25)
				})
			})
		})
	}
}

func TestOpenSQLUnsupportedDriver(t *testing.T) {
	Convey("Given an unknown driver", t, func() {
		_, err := repository.OpenSQL(context.Background(), "oracle", "x")
		So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
	})
}

func TestSQLStoreReopen(t *testing.T) {
	Convey("Given a seeded sqlite file reopened with seeding on", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "gridiron.db")
		s, err := repository.OpenSQL(ctx, repository.DriverSQLite, path, repository.WithSeed(true))
		So(err, ShouldBeNil)
		So(s.ImportRelations(ctx, model.Relations{Players: []model.Player{{ID: "extra", Position: "K", PositionGroup: "ST"}}}), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		s, err = repository.OpenSQL(ctx, repository.DriverSQLite, path, repository.WithSeed(true))
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("Then the seed is not applied twice", func() {
			rel, err := s.Relations(ctx)
			So(err, ShouldBeNil)
			So(rel.Players, ShouldHaveLength, 25)
		})
	})
}
