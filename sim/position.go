package sim

import (
	"github.com/shopspring/decimal"
)

// Position is an open long position. Its fields are fixed when it is
// opened; stops do not trail.
type Position struct {
	EntryPrice decimal.Decimal
	EntryDate  string
	StopLoss   decimal.NullDecimal
	TakeProfit decimal.NullDecimal
	Volume     decimal.Decimal
}

// exitReason reports which closing condition fires at price, checking
// stop-loss, then take-profit, then the signal reversal.
func (p *Position) exitReason(price decimal.Decimal, reversal bool) (CloseReason, bool) {
	switch {
	case hitStopLoss(p, price):
		return StopLoss, true
	case hitTakeProfit(p, price):
		return TakeProfit, true
	case reversal:
		return SignalReversal, true
	}
	return "", false
}
