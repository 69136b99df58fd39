package types

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits the engine persists and
// computes at. Rounding is always half-away-from-zero (decimal.Decimal's
// default Round behaviour), never half-to-even.
const MoneyScale = 2

// RoundMoney rounds d to MoneyScale fractional digits, half-away-from-zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
