package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// money rounds to 2 decimal places, half away from zero.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns amount × pct / 100 rounded to money precision.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return money(amount.Mul(pct).Div(hundred))
}

// validPercent reports whether pct lies in [0, 100].
func validPercent(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// lineTotal is price × qty × (1 − discount/100).
func lineTotal(price decimal.Decimal, qty int, discount decimal.Decimal) decimal.Decimal {
	gross := price.Mul(decimal.NewFromInt(int64(qty)))
	return money(gross.Sub(gross.Mul(discount).Div(hundred)))
}

