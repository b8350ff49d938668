package market

import (
	"github.com/shopspring/decimal"
)

// TickSource yields ticks one at a time. Implementations return
// (ok=false, err=nil) at the end of the data.
type TickSource interface {
	Next() (t Tick, ok bool, err error)
	Close() error
}

// Tick is one daily observation for an instrument. Date is an opaque,
// ordered label ("Feb 25, 2026"); nothing does arithmetic on it.
type Tick struct {
	Instrument Instrument
	Date       string
	Open       decimal.Decimal
	Price      decimal.Decimal
	News       bool
}

// Bullish reports whether the tick closed above its open.
func (t Tick) Bullish() bool {
	return t.Price.GreaterThan(t.Open)
}
