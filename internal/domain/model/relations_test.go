package model_test

import (
	"testing"

	model "github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestRelations(t *testing.T) {
	convey.Convey("Given relations for one player", t, func() {
		rel := model.Relations{
			Players: []model.Player{{ID: "p1", FirstName: "Cam", LastName: "Reed", Position: "QB", PositionGroup: "QB"}},
			Usage:   []model.SeasonUsage{{PlayerID: "p1", Snaps: 700, LeverageSnaps: 120}},
			Grades:  []model.Grade{{PlayerID: "p1", OverallGrade: 84}},
			Roles:   []model.RoleAssignment{{PlayerID: "p1", Role: types.RoleStarter, ReplacementRisk: types.RiskHigh}},
		}

		convey.Convey("When cloning", func() {
			clone := rel.Clone()
			clone.Players[0].Position = "WR"
			clone.Usage[0].Snaps = 1

			convey.Convey("Then the source is untouched", func() {
				convey.So(rel.Players[0].Position, convey.ShouldEqual, "QB")
				convey.So(rel.Usage[0].Snaps, convey.ShouldEqual, 700)
			})
		})

		convey.Convey("When looking up rows", func() {
			convey.So(rel.HasPlayer("p1"), convey.ShouldBeTrue)
			convey.So(rel.HasPlayer("p2"), convey.ShouldBeFalse)
			convey.So(rel.UsageFor("p1").Snaps, convey.ShouldEqual, 700)
			convey.So(rel.Players[0].Name(), convey.ShouldEqual, "Cam Reed")
		})

		convey.Convey("When a row is missing", func() {
			convey.Convey("Then defaults are returned", func() {
				convey.So(rel.UsageFor("p2").Snaps, convey.ShouldEqual, 0)
				convey.So(rel.GradeFor("p2").OverallGrade, convey.ShouldEqual, model.DefaultOverallGrade)
				convey.So(rel.RoleFor("p2").Role, convey.ShouldEqual, types.RoleDepth)
				convey.So(rel.RoleFor("p2").ReplacementRisk, convey.ShouldEqual, types.RiskMed)
			})
		})
	})
}

func TestPoolAllocatable(t *testing.T) {
	convey.Convey("Given pools with reserves", t, func() {
		convey.So(model.Pool{PoolAmount: 100_000, ReservedAmount: 20_000}.Allocatable(), convey.ShouldEqual, 80_000)
		convey.So(model.Pool{PoolAmount: 10_000, ReservedAmount: 20_000}.Allocatable(), convey.ShouldEqual, 0)
	})
}

func TestActiveRoster(t *testing.T) {
	convey.Convey("Given a roster with a sim-removed player", t, func() {
		roster := []model.RosterPlayer{{ID: "a"}, {ID: "b", SimRemoved: true}, {ID: "c"}}
		active := model.Active(roster)
		convey.So(len(active), convey.ShouldEqual, 2)
		convey.So(active[1].ID, convey.ShouldEqual, "c")

		clone := model.CloneRoster(roster)
		clone[0].SimRemoved = true
		convey.So(roster[0].SimRemoved, convey.ShouldBeFalse)
	})
}
