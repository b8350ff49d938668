package sim

import (
	"github.com/rustyeddy/fxsim/market"
	"github.com/shopspring/decimal"
)

type CloseReason string

const (
	StopLoss       CloseReason = "StopLoss"
	TakeProfit     CloseReason = "TakeProfit"
	SignalReversal CloseReason = "SignalReversal"
)

// ClosedTrade is the record appended to the engine history when a
// position is closed.
type ClosedTrade struct {
	ID         string
	Instrument market.Instrument
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Volume     decimal.Decimal
	EntryDate  string
	Date       string
	Profit     decimal.Decimal
	Reason     CloseReason
}

// Win reports whether the trade made money. Break-even trades are not wins.
func (t ClosedTrade) Win() bool {
	return t.Profit.IsPositive()
}
