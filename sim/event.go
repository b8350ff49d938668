package sim

import (
	"github.com/rustyeddy/fxsim/market"
	"github.com/shopspring/decimal"
)

type EventKind int

const (
	EventSkipped EventKind = iota + 1
	EventWarmup
	EventOpened
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventSkipped:
		return "skipped"
	case EventWarmup:
		return "warmup"
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	}
	return "unknown"
}

// Event describes the single observable outcome of a tick.
type Event struct {
	Kind       EventKind
	Instrument market.Instrument
	Date       string
	Price      decimal.Decimal

	// Opened
	Volume     decimal.Decimal
	StopLoss   decimal.NullDecimal
	TakeProfit decimal.NullDecimal

	// Closed
	Profit decimal.Decimal
	Reason CloseReason
	Trade  *ClosedTrade
}
