package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places monetary values are rounded to.
const MoneyPlaces = 2

// MoneyEpsilon is the tolerance allowed when reconstructing a split sale price.
var MoneyEpsilon = decimal.New(1, -MoneyPlaces)

// RoundMoney rounds d half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

var hundred = decimal.NewFromInt(100)

// Percent returns base * rate / 100, unrounded.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}
