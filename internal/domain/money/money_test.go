package money_test

import (
	"testing"

	"github.com/okian/gridiron/internal/domain/money"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRounding(t *testing.T) {
	Convey("Given currency amounts", t, func() {
		So(money.Cents(1234.5678), ShouldEqual, 1234.57)
		So(money.Cents(-0.005), ShouldEqual, -0.01)
		So(money.Round(0.123456, 4), ShouldEqual, 0.1235)
		So(money.Dollars(99.5), ShouldEqual, 100)

		Convey("When rounding to a unit", func() {
			So(money.ToUnit(187_400, 1_000), ShouldEqual, 187_000)
			So(money.ToUnit(187_500, 1_000), ShouldEqual, 188_000)
			So(money.ToUnit(187_499.99, 0), ShouldEqual, 187_499.99)
		})
	})
}

func TestFormatting(t *testing.T) {
	Convey("Given amounts to display", t, func() {
		So(money.USD(1_250_000), ShouldEqual, "$1,250,000")
		So(money.USD(-45_000.4), ShouldEqual, "-$45,000")
		So(money.USD(0), ShouldEqual, "$0")
		So(money.Percent(0.315), ShouldEqual, "31.5%")
	})
}
