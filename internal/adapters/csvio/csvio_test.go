package csvio_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/okian/gridiron/internal/adapters/csvio"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const rosterCSV = `first_name,last_name,position_group,position,class_year,height_inches,weight_lbs,status,role,depth_rank,replacement_risk,external_ref
Jalen,Price,OL,OT,jr,77,310,active,STARTER,1,high,ext-1
Omar,Diaz,,lb,SO,abc,230,active,,2,,
`

const usageCSV = `external_ref,games_played,snaps,snaps_offense,snaps_defense,snaps_st,leverage_snaps,overall_grade
ext-1,12,800,780,0,20,150,81.5
ghost,10,100,0,100,0,10,70
ext-1b,,,,,,,
`

func TestReadRoster(t *testing.T) {
	Convey("Given a roster intake file", t, func() {
		res, err := csvio.ReadRoster(strings.NewReader(rosterCSV))
		So(err, ShouldBeNil)
		So(len(res.Relations.Players), ShouldEqual, 2)
		So(len(res.Relations.Roles), ShouldEqual, 2)

		Convey("Then the external ref becomes the player id", func() {
			p := res.Relations.Players[0]
			So(p.ID, ShouldEqual, "ext-1")
			So(p.ExternalRef, ShouldEqual, "ext-1")
			So(p.Position, ShouldEqual, "OT")
			So(p.ClassYear, ShouldEqual, "JR")
			So(p.HeightInches, ShouldEqual, 77)

			r := res.Relations.RoleFor("ext-1")
			So(r.Role, ShouldEqual, types.RoleStarter)
			So(r.ReplacementRisk, ShouldEqual, types.RiskHigh)
		})

		Convey("Then blank and bad cells fall back to defaults", func() {
			p := res.Relations.Players[1]
			So(p.ID, ShouldNotBeEmpty)
			So(p.ExternalRef, ShouldBeEmpty)
			So(p.PositionGroup, ShouldEqual, "LB")
			So(p.HeightInches, ShouldEqual, 0)

			r := res.Relations.RoleFor(p.ID)
			So(r.Role, ShouldEqual, model.DefaultRole)
			So(r.ReplacementRisk, ShouldEqual, model.DefaultRisk)
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Warnings[0], ShouldContainSubstring, "height_inches")
		})
	})

	Convey("Given a file without the position column", t, func() {
		_, err := csvio.ReadRoster(strings.NewReader("first_name,last_name\nA,B\n"))
		So(errors.Is(err, csvio.ErrMissingHeader), ShouldBeTrue)
	})

	Convey("Given an empty file", t, func() {
		_, err := csvio.ReadRoster(strings.NewReader(""))
		So(errors.Is(err, csvio.ErrEmpty), ShouldBeTrue)
	})
}

func TestReadUsage(t *testing.T) {
	Convey("Given a usage file and known refs", t, func() {
		refs := map[string]string{"ext-1": "p1", "ext-1b": "p2"}
		res, err := csvio.ReadUsage(strings.NewReader(usageCSV), refs)
		So(err, ShouldBeNil)

		Convey("Then rows join by external ref", func() {
			So(len(res.Relations.Usage), ShouldEqual, 2)
			u := res.Relations.UsageFor("p1")
			So(u.Snaps, ShouldEqual, 800)
			So(u.LeverageSnaps, ShouldEqual, 150)
			So(res.Relations.GradeFor("p1").OverallGrade, ShouldEqual, 81.5)
		})

		Convey("Then an empty grade uses the default", func() {
			So(res.Relations.GradeFor("p2").OverallGrade, ShouldEqual, model.DefaultOverallGrade)
		})

		Convey("Then unknown refs are skipped with a warning", func() {
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Warnings[0], ShouldContainSubstring, "ghost")
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given parsed relations", t, func() {
		roster, err := csvio.ReadRoster(strings.NewReader(rosterCSV))
		So(err, ShouldBeNil)
		rel := roster.Relations
		rel.Usage = []model.SeasonUsage{{PlayerID: "ext-1", GamesPlayed: 12, Snaps: 800, LeverageSnaps: 150}}
		rel.Grades = []model.Grade{{PlayerID: "ext-1", OverallGrade: 81.5}}

		Convey("When the roster is exported", func() {
			var buf bytes.Buffer
			So(csvio.WriteRoster(&buf, rel), ShouldBeNil)
			So(strings.SplitN(buf.String(), "\n", 2)[0], ShouldEqual, strings.Join(csvio.RosterHeader, ","))

			back, err := csvio.ReadRoster(&buf)
			So(err, ShouldBeNil)
			So(back.Relations.Players[0], ShouldResemble, rel.Players[0])
		})

		Convey("When usage is exported", func() {
			var buf bytes.Buffer
			So(csvio.WriteUsage(&buf, rel), ShouldBeNil)
			So(strings.SplitN(buf.String(), "\n", 2)[0], ShouldEqual, strings.Join(csvio.UsageHeader, ","))

			back, err := csvio.ReadUsage(&buf, csvio.RefIndex(rel))
			So(err, ShouldBeNil)
			So(back.Relations.UsageFor("ext-1").Snaps, ShouldEqual, 800)
			So(back.Relations.GradeFor("ext-1").OverallGrade, ShouldEqual, 81.5)
		})
	})
}
