package sim

import (
	"github.com/rustyeddy/fxsim/market"
	"github.com/shopspring/decimal"
)

// Quote is what the engine sees for one tick. Open is the candle's
// reference price; Indicator carries a separately computed signal value
// such as a moving average and is invalid while that value is undefined.
type Quote struct {
	Instrument market.Instrument
	Date       string
	Price      decimal.Decimal
	Open       decimal.Decimal
	Indicator  decimal.NullDecimal
	News       bool
}

// QuoteFromTick builds a quote with no indicator value.
func QuoteFromTick(t market.Tick) Quote {
	return Quote{
		Instrument: t.Instrument,
		Date:       t.Date,
		Price:      t.Price,
		Open:       t.Open,
		News:       t.News,
	}
}

// Signal decides entries and reversal exits. Implementations must be pure.
type Signal interface {
	Name() string

	// Ready reports whether the quote carries enough information to
	// evaluate the signal at all.
	Ready(q Quote) bool

	Entry(q Quote) bool
	Exit(q Quote) bool
}

// Sizing is the outcome of sizing a new position.
type Sizing struct {
	Volume     decimal.Decimal
	StopLoss   decimal.NullDecimal
	TakeProfit decimal.NullDecimal
}

// Sizer computes volume and protective levels for a new position from the
// current balance, the entry price and the candle reference price.
type Sizer interface {
	Name() string
	Size(balance, entry, reference decimal.Decimal) (Sizing, error)
}

// Strategy pairs a signal with a sizing policy.
type Strategy struct {
	Signal Signal
	Sizer  Sizer
}

func (s Strategy) String() string {
	if s.Signal == nil || s.Sizer == nil {
		return "<incomplete>"
	}
	return s.Signal.Name() + "/" + s.Sizer.Name()
}
