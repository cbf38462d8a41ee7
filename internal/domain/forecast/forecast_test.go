package forecast_test

import (
	"errors"
	"testing"

	"github.com/okian/gridiron/internal/domain/forecast"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/policy"
	"github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func rp(id, group string, role types.Role, grad int, color types.RiskColor) model.RosterPlayer {
	return model.RosterPlayer{ID: id, Name: id, PositionGroup: group, Role: role, GradYear: grad, RiskColor: color}
}

func tenPlayerRoster() []model.RosterPlayer {
	return []model.RosterPlayer{
		rp("g1", "OL", types.RoleStarter, 2027, types.ColorGreen),
		rp("g2", "OL", types.RoleDepth, 2027, types.ColorGreen),
		rp("g3", "WR", types.RoleRotation, 2027, types.ColorGreen),
		rp("d1", "DL", types.RoleDepth, 2029, types.ColorRed),
		rp("d2", "DL", types.RoleDepth, 2030, types.ColorRed),
		rp("d3", "DL", types.RoleBackup, 2029, types.ColorYellow),
		rp("q1", "QB", types.RoleStarter, 2028, types.ColorGreen),
		rp("q2", "QB", types.RoleBackup, 2029, types.ColorGreen),
		rp("o3", "OL", types.RoleRotation, 2029, types.ColorGreen),
		rp("w2", "WR", types.RoleStarter, 2028, types.ColorGreen),
	}
}

func TestForecastYearOne(t *testing.T) {
	Convey("Given ten players with three graduating next year", t, func() {
		p := forecast.New(policy.DefaultForecast())
		roster := tenPlayerRoster()

		y, err := p.Year(roster, 1, 1_000_000)
		So(err, ShouldBeNil)

		Convey("Then the graduates are listed as graduation departures", func() {
			So(y.Label, ShouldEqual, "Y+1 (2027)")
			So(y.GraduatingCount, ShouldEqual, 3)
			grads := 0
			for _, d := range y.Departures {
				if d.Reason == types.ReasonGraduation {
					grads++
				}
			}
			So(grads, ShouldEqual, 3)
			So(y.ExpectedDepartures, ShouldBeGreaterThanOrEqualTo, 3)
		})

		Convey("Then transfers are rounded per group", func() {
			So(y.TransferCount, ShouldEqual, 1)
			last := y.Departures[len(y.Departures)-1]
			So(last.Reason, ShouldEqual, types.ReasonTransfer)
			So(last.PlayerID, ShouldEqual, "d1")
			So(last.Probability, ShouldEqual, 0.525)
		})

		Convey("Then counts and spend follow", func() {
			So(y.ExpectedDepartures, ShouldEqual, 4)
			So(y.ReturningCount, ShouldEqual, 6)
			So(y.StartersLeaving, ShouldEqual, 1)
			So(y.ProjectedSpend, ShouldEqual, 1_050_000)
		})

		Convey("Then gaps are reported only where short of target", func() {
			So(y.GapsByGroup, ShouldNotContainKey, "QB")
			So(y.GapsByGroup["OL"], ShouldEqual, 4)
			So(y.GapsByGroup["DL"], ShouldEqual, 2)
			So(y.GapsByGroup["WR"], ShouldEqual, 2)
			So(y.GapsByGroup["RB"], ShouldEqual, 2)
			So(y.Notes[0], ShouldEqual, "3 graduating by 2027")
		})
	})
}

func TestForecastHorizon(t *testing.T) {
	Convey("Given the same roster three years out", t, func() {
		p := forecast.New(policy.DefaultForecast())
		years, err := p.Years(tenPlayerRoster(), 3, 1_000_000)
		So(err, ShouldBeNil)
		So(len(years), ShouldEqual, 3)

		y3 := years[2]
		So(y3.GraduatingCount, ShouldEqual, 9)
		So(y3.TransferCount, ShouldEqual, 1)
		So(y3.ReturningCount, ShouldEqual, 0)
		So(y3.StartersLeaving, ShouldEqual, 3)
		So(y3.Drivers, ShouldContain, "Large graduating class (9)")
		So(years[1].ProjectedSpend, ShouldEqual, 1_102_500)

		Convey("Then each year starts from the same roster", func() {
			again, _ := p.Year(tenPlayerRoster(), 1, 1_000_000)
			So(years[0], ShouldResemble, again)
		})
	})
}

func TestForecastDeterminism(t *testing.T) {
	Convey("Given repeated calls", t, func() {
		p := forecast.New(policy.DefaultForecast())
		a, _ := p.Year(tenPlayerRoster(), 2, 500_000)
		b, _ := p.Year(tenPlayerRoster(), 2, 500_000)
		So(a.ExpectedDepartures, ShouldEqual, b.ExpectedDepartures)
		So(a.GapsByGroup, ShouldResemble, b.GapsByGroup)
		So(a.Departures, ShouldResemble, b.Departures)
	})
}

func TestForecastEdges(t *testing.T) {
	Convey("Given a projector", t, func() {
		p := forecast.New(policy.DefaultForecast())

		Convey("When the year offset is out of range", func() {
			_, err := p.Year(nil, 0, 0)
			So(errors.Is(err, forecast.ErrInvalidYear), ShouldBeTrue)
			_, err = p.Years(nil, 4, 0)
			So(errors.Is(err, forecast.ErrInvalidYear), ShouldBeTrue)
		})

		Convey("When a graduate was removed by a simulation", func() {
			roster := tenPlayerRoster()
			roster[0].SimRemoved = true
			y, _ := p.Year(roster, 1, 0)
			So(y.GraduatingCount, ShouldEqual, 2)
			So(y.StartersLeaving, ShouldEqual, 0)
		})

		Convey("When the roster is empty", func() {
			y, err := p.Year(nil, 1, 0)
			So(err, ShouldBeNil)
			So(y.ReturningCount, ShouldEqual, 0)
			So(y.Departures, ShouldBeEmpty)
			So(y.TotalGap(), ShouldEqual, 26)
		})
	})
}
