// Package report turns engine output into console lines and end-of-run
// summaries.
package report

import (
	"sort"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
)

type InstrumentProfit struct {
	Instrument market.Instrument
	Trades     int
	Profit     decimal.Decimal
}

// Summary is a read-only view of a finished run.
type Summary struct {
	RunID    string
	Strategy string
	Dataset  string

	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	NetProfit      decimal.Decimal
	ReturnPct      decimal.Decimal

	Trades  []sim.ClosedTrade
	Wins    int
	Losses  int
	WinRate decimal.Decimal

	PerInstrument []InstrumentProfit

	// positions still open when the data ran out
	Open map[market.Instrument]sim.Position
}

var hundred = decimal.NewFromInt(100)

// Summarize builds a Summary from an engine's balances and history. Per
// instrument profits are sorted by instrument and sum to NetProfit.
func Summarize(initial, final decimal.Decimal, history []sim.ClosedTrade) Summary {
	s := Summary{
		InitialBalance: initial,
		FinalBalance:   final,
		NetProfit:      final.Sub(initial),
		Trades:         history,
	}
	if initial.IsPositive() {
		s.ReturnPct = s.NetProfit.Div(initial).Mul(hundred)
	}

	byInst := map[market.Instrument]*InstrumentProfit{}
	for _, t := range history {
		switch {
		case t.Profit.IsPositive():
			s.Wins++
		case t.Profit.IsNegative():
			s.Losses++
		}

		ip, ok := byInst[t.Instrument]
		if !ok {
			ip = &InstrumentProfit{Instrument: t.Instrument}
			byInst[t.Instrument] = ip
		}
		ip.Trades++
		ip.Profit = ip.Profit.Add(t.Profit)
	}

	if len(history) > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.Wins)).Div(decimal.NewFromInt(int64(len(history)))).Mul(hundred)
	}

	for _, ip := range byInst {
		s.PerInstrument = append(s.PerInstrument, *ip)
	}
	sort.Slice(s.PerInstrument, func(i, j int) bool {
		return s.PerInstrument[i].Instrument < s.PerInstrument[j].Instrument
	})
	return s
}

// FromEngine summarizes the engine's current state, including any
// positions left open.
func FromEngine(e *sim.Engine) Summary {
	s := Summarize(e.InitialBalance(), e.Balance(), e.History())
	s.Strategy = e.Strategy().String()
	s.Open = e.OpenPositions()
	return s
}

// TotalPerInstrument sums PerInstrument. It equals NetProfit for any
// summary built from a consistent engine.
func (s Summary) TotalPerInstrument() decimal.Decimal {
	total := decimal.Zero
	for _, ip := range s.PerInstrument {
		total = total.Add(ip.Profit)
	}
	return total
}
