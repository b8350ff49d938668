package risk

import (
	"github.com/shopspring/decimal"
)

// PlannedRisk is the amount lost if a position of volume units bought at
// entry is stopped out at stop.
func PlannedRisk(volume, entry, stop decimal.Decimal) decimal.Decimal {
	return entry.Sub(stop).Abs().Mul(volume)
}

// RR is the reward-to-risk ratio of a trade. Zero risk yields zero.
func RR(entry, stop, takeProfit decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(stop).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	return takeProfit.Sub(entry).Abs().Div(risk)
}

// RiskPct is planned risk as a fraction of balance.
func RiskPct(planned, balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return planned.Div(balance)
}
