// Package money rounds currency and ratio values with decimal arithmetic so
// repeated runs produce identical figures.
package money

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Cents rounds a dollar amount to two decimal places.
func Cents(x float64) float64 {
	return Round(x, 2)
}

// Round rounds x half away from zero to places decimal places.
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// ToUnit rounds x to the nearest multiple of unit. A non-positive unit returns x unchanged.
func ToUnit(x, unit float64) float64 {
	if unit <= 0 {
		return x
	}
	u := decimal.NewFromFloat(unit)
	return decimal.NewFromFloat(x).Div(u).Round(0).Mul(u).InexactFloat64()
}

// Dollars rounds to whole dollars.
func Dollars(x float64) float64 {
	return Round(x, 0)
}

// USD formats a whole-dollar amount with thousands separators, e.g. "$1,250,000".
func USD(x float64) string {
	v := int64(math.Round(x))
	if v < 0 {
		return "-$" + humanize.Comma(-v)
	}
	return "$" + humanize.Comma(v)
}

// Percent formats a ratio as a percentage with one decimal, e.g. 0.315 as "31.5%".
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
