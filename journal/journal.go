// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
)

// RunRecord summarizes one simulation run.
type RunRecord struct {
	RunID          string
	Created        time.Time
	Strategy       string
	Dataset        string
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	Trades         int
}

type TradeRecord struct {
	RunID      string
	TradeID    string
	Instrument string
	Volume     decimal.Decimal
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	EntryDate  string
	CloseDate  string
	Profit     decimal.Decimal
	Reason     string
}

// EquitySnapshot is the balance after the Seq-th close of a run.
type EquitySnapshot struct {
	RunID   string
	Seq     int
	Date    string
	Balance decimal.Decimal
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

func FromClosedTrade(runID string, t sim.ClosedTrade) TradeRecord {
	return TradeRecord{
		RunID:      runID,
		TradeID:    t.ID,
		Instrument: t.Instrument.String(),
		Volume:     t.Volume,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		EntryDate:  t.EntryDate,
		CloseDate:  t.Date,
		Profit:     t.Profit,
		Reason:     string(t.Reason),
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(RunRecord) error         { return nil }
func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
