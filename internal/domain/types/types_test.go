package types_test

import (
	"testing"

	types "github.com/okian/gridiron/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRole(t *testing.T) {
	Convey("Given role codes from intake files", t, func() {
		Convey("When the code is a known role in any case", func() {
			So(types.ParseRole("starter"), ShouldEqual, types.RoleStarter)
			So(types.ParseRole(" Rotation "), ShouldEqual, types.RoleRotation)
			So(types.ParseRole("BACKUP"), ShouldEqual, types.RoleBackup)
			So(types.ParseRole("developmental"), ShouldEqual, types.RoleDevelopmental)
		})

		Convey("When the code is the combined backup/depth label or unknown", func() {
			So(types.ParseRole("BACKUP/DEPTH"), ShouldEqual, types.RoleDepth)
			So(types.ParseRole(""), ShouldEqual, types.RoleDepth)
			So(types.ParseRole("walk-on"), ShouldEqual, types.RoleDepth)
		})

		Convey("Then only starters and rotation players are floored", func() {
			So(types.RoleStarter.Floored(), ShouldBeTrue)
			So(types.RoleRotation.Floored(), ShouldBeTrue)
			So(types.RoleDepth.Floored(), ShouldBeFalse)
			So(types.RoleDevelopmental.Depth(), ShouldBeTrue)
			So(types.RoleRotation.Depth(), ShouldBeFalse)
		})
	})
}

func TestParseReplacementRisk(t *testing.T) {
	Convey("Given replacement risk labels", t, func() {
		So(types.ParseReplacementRisk("low"), ShouldEqual, types.RiskLow)
		So(types.ParseReplacementRisk("High"), ShouldEqual, types.RiskHigh)
		So(types.ParseReplacementRisk("MED"), ShouldEqual, types.RiskMed)

		Convey("Then unrecognized values default to MED", func() {
			So(types.ParseReplacementRisk("medium"), ShouldEqual, types.RiskMed)
			So(types.ParseReplacementRisk("???"), ShouldEqual, types.RiskMed)
			So(types.ParseReplacementRisk(""), ShouldEqual, types.RiskMed)
		})
	})
}

func TestGuardrailStatusWorse(t *testing.T) {
	Convey("Given two guardrail statuses", t, func() {
		So(types.StatusWithin.Worse(types.StatusNear), ShouldEqual, types.StatusNear)
		So(types.StatusOver.Worse(types.StatusNear), ShouldEqual, types.StatusOver)
		So(types.StatusNear.Worse(types.StatusWithin), ShouldEqual, types.StatusNear)
		So(types.StatusWithin.Worse(types.StatusWithin), ShouldEqual, types.StatusWithin)
	})
}

func TestParseRiskColor(t *testing.T) {
	Convey("Given risk color labels", t, func() {
		So(types.ParseRiskColor("red"), ShouldEqual, types.ColorRed)
		So(types.ParseRiskColor("Yellow"), ShouldEqual, types.ColorYellow)
		So(types.ParseRiskColor("blue"), ShouldEqual, types.ColorGreen)
	})
}
