package budget_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/budget"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig() policy.BudgetConfig {
	cfg := policy.DefaultBudget()
	cfg.TotalBudget = 1_000_000
	cfg.ContingencyReserve = 100_000
	cfg.TreatReserveAsLocked = true
	cfg.MaxPositionPercent = 0.5
	cfg.WarnPositionPercent = 0.35
	cfg.MinRemainingBuffer = 100_000
	return cfg
}

func player(id, group string, cost float64) model.RosterPlayer {
	return model.RosterPlayer{ID: id, PositionGroup: group, EstimatedCost: cost, Role: types.RoleRotation}
}

func TestCost(t *testing.T) {
	Convey("Given the default budget settings", t, func() {
		a := budget.New(policy.DefaultBudget())

		Convey("When a player has an estimated cost", func() {
			So(a.Cost(model.RosterPlayer{EstimatedCost: 123_456, NILBand: "A"}), ShouldEqual, 123_456)
		})

		Convey("When the cost is derived from the band", func() {
			p := model.RosterPlayer{NILBand: "C", Role: types.RoleDepth, PositionGroup: "OL"}
			So(a.Cost(p), ShouldEqual, 48_000)
		})

		Convey("When the derived cost exceeds the per-player maximum", func() {
			p := model.RosterPlayer{NILBand: "A", Role: types.RoleStarter, PositionGroup: "QB"}
			So(a.Cost(p), ShouldEqual, 900_000)
		})

		Convey("When the band is unknown", func() {
			So(a.Cost(model.RosterPlayer{NILBand: "Z", Role: types.RoleStarter}), ShouldEqual, 0)
		})
	})
}

func TestAllocations(t *testing.T) {
	Convey("Given a roster with a sim-removed player", t, func() {
		a := budget.New(testConfig())
		roster := []model.RosterPlayer{
			player("qb", "QB", 200_000),
			player("ol1", "OL", 120_000),
			player("ol2", "OL", 80_000),
			player("dl", "DL", 500_000),
		}
		roster[3].SimRemoved = true

		Convey("Then removed players are excluded on request", func() {
			groups := a.AllocationsByGroup(roster, true)
			So(groups["OL"], ShouldEqual, 200_000)
			So(groups, ShouldNotContainKey, "DL")
			So(a.AllocationsByGroup(roster, false)["DL"], ShouldEqual, 500_000)
		})

		Convey("Then remaining uses the locked reserve", func() {
			r := a.Remaining(roster)
			So(r.Available, ShouldEqual, 900_000)
			So(r.Allocated, ShouldEqual, 400_000)
			So(r.Remaining, ShouldEqual, 500_000)
			So(r.ContingencyReserve, ShouldEqual, 100_000)
		})

		Convey("When the reserve is not locked", func() {
			cfg := testConfig()
			cfg.TreatReserveAsLocked = false
			So(budget.New(cfg).Remaining(roster).Available, ShouldEqual, 1_000_000)
		})
	})
}

func TestGuardrailStatus(t *testing.T) {
	Convey("Given a balanced roster", t, func() {
		a := budget.New(testConfig())
		roster := []model.RosterPlayer{
			player("qb", "QB", 200_000),
			player("ol", "OL", 200_000),
			player("wr", "WR", 150_000),
			player("db", "DB", 150_000),
		}

		Convey("Then the status is within", func() {
			st := a.GuardrailStatus(roster)
			So(st.Status, ShouldEqual, types.StatusWithin)
			So(st.Reasons, ShouldBeEmpty)
		})

		Convey("When spending exceeds the available budget", func() {
			roster = append(roster, player("lb", "LB", 300_000))
			st := a.GuardrailStatus(roster)
			So(st.Status, ShouldEqual, types.StatusOver)
			So(st.Reasons, ShouldResemble, []string{"budget exceeded by $100,000"})
		})
	})

	Convey("Given a roster concentrated in two groups", t, func() {
		cfg := testConfig()
		cfg.MinRemainingBuffer = 200_000
		a := budget.New(cfg)
		roster := []model.RosterPlayer{
			player("qb", "QB", 450_000),
			player("ol", "OL", 300_000),
		}

		Convey("Then every triggered reason is reported and the worst status wins", func() {
			st := a.GuardrailStatus(roster)
			So(st.Status, ShouldEqual, types.StatusOver)
			So(st.Reasons, ShouldResemble, []string{
				"remaining $150,000 below buffer $200,000",
				"OL at 40.0% of allocated above 35.0% warning",
				"QB at 60.0% of allocated exceeds 50.0% cap",
			})
		})

		Convey("Then the report carries the same evaluation", func() {
			r := a.Report(roster)
			So(r.Guardrail.Status, ShouldEqual, types.StatusOver)
			So(r.GroupShares["QB"], ShouldAlmostEqual, 0.6, 1e-9)
			So(r.Budget.Allocations["OL"], ShouldEqual, 300_000)
			So(r.Budget.Guardrails.MaxPerPositionPercent, ShouldEqual, 0.5)
		})
	})

	Convey("Given an empty roster", t, func() {
		st := budget.New(testConfig()).GuardrailStatus(nil)
		So(st.Status, ShouldEqual, types.StatusWithin)
	})
}
