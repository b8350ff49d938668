package sim

import "github.com/shopspring/decimal"

// RealizedPL is the profit of closing volume units bought at entry at exit.
func RealizedPL(entry, exit, volume decimal.Decimal) decimal.Decimal {
	return exit.Sub(entry).Mul(volume)
}
