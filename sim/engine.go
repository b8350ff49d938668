package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/pkg/id"
	"github.com/shopspring/decimal"
)

// Engine tracks at most one open long position per instrument, a running
// balance and the closed-trade history. It does no I/O.
type Engine struct {
	mu sync.Mutex

	strategy       Strategy
	initialBalance decimal.Decimal
	balance        decimal.Decimal

	// every registered instrument has a key; nil means flat
	positions map[market.Instrument]*Position
	history   []ClosedTrade
}

func NewEngine(balance decimal.Decimal, instruments []market.Instrument, strat Strategy) (*Engine, error) {
	if !balance.IsPositive() {
		return nil, fmt.Errorf("%w: balance must be positive, got %s", ErrInvalidConfiguration, balance)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("%w: at least one instrument is required", ErrInvalidConfiguration)
	}
	if strat.Signal == nil || strat.Sizer == nil {
		return nil, fmt.Errorf("%w: strategy needs a signal and a sizer", ErrInvalidConfiguration)
	}

	positions := make(map[market.Instrument]*Position, len(instruments))
	for _, inst := range instruments {
		if _, dup := positions[inst]; dup {
			return nil, fmt.Errorf("%w: duplicate instrument %s", ErrInvalidConfiguration, inst)
		}
		positions[inst] = nil
	}

	return &Engine{
		strategy:       strat,
		initialBalance: balance,
		balance:        balance,
		positions:      positions,
	}, nil
}

// ProcessTick applies one quote. Checks run in a fixed order: news filter,
// signal warm-up, entry, then exit (stop-loss, take-profit, reversal). The
// returned event is nil when nothing happened. On error the engine state is
// unchanged.
func (e *Engine) ProcessTick(q Quote) (*Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[q.Instrument]
	if !ok {
		return nil, fmt.Errorf("process tick: %w: %q", ErrUnknownInstrument, q.Instrument)
	}

	if q.News {
		return &Event{Kind: EventSkipped, Instrument: q.Instrument, Date: q.Date, Price: q.Price}, nil
	}

	sig := e.strategy.Signal
	if !sig.Ready(q) {
		return &Event{Kind: EventWarmup, Instrument: q.Instrument, Date: q.Date, Price: q.Price}, nil
	}

	if pos == nil {
		if !sig.Entry(q) {
			return nil, nil
		}
		return e.openLocked(q)
	}

	reason, hit := pos.exitReason(q.Price, sig.Exit(q))
	if !hit {
		return nil, nil
	}
	return e.closeLocked(q, pos, reason), nil
}

func (e *Engine) openLocked(q Quote) (*Event, error) {
	sz, err := e.strategy.Sizer.Size(e.balance, q.Price, q.Open)
	if err != nil {
		return nil, fmt.Errorf("open %s [%s]: %w", q.Instrument, q.Date, err)
	}

	e.positions[q.Instrument] = &Position{
		EntryPrice: q.Price,
		EntryDate:  q.Date,
		StopLoss:   sz.StopLoss,
		TakeProfit: sz.TakeProfit,
		Volume:     sz.Volume,
	}

	return &Event{
		Kind:       EventOpened,
		Instrument: q.Instrument,
		Date:       q.Date,
		Price:      q.Price,
		Volume:     sz.Volume,
		StopLoss:   sz.StopLoss,
		TakeProfit: sz.TakeProfit,
	}, nil
}

func (e *Engine) closeLocked(q Quote, pos *Position, reason CloseReason) *Event {
	pl := RealizedPL(pos.EntryPrice, q.Price, pos.Volume)

	trade := ClosedTrade{
		ID:         id.New(),
		Instrument: q.Instrument,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  q.Price,
		Volume:     pos.Volume,
		EntryDate:  pos.EntryDate,
		Date:       q.Date,
		Profit:     pl,
		Reason:     reason,
	}

	e.balance = e.balance.Add(pl)
	e.history = append(e.history, trade)
	e.positions[q.Instrument] = nil

	return &Event{
		Kind:       EventClosed,
		Instrument: q.Instrument,
		Date:       q.Date,
		Price:      q.Price,
		Volume:     pos.Volume,
		Profit:     pl,
		Reason:     reason,
		Trade:      &trade,
	}
}

func (e *Engine) Strategy() Strategy { return e.strategy }

func (e *Engine) InitialBalance() decimal.Decimal { return e.initialBalance }

func (e *Engine) Balance() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// History returns a copy of the closed trades in closing order.
func (e *Engine) History() []ClosedTrade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ClosedTrade, len(e.history))
	copy(out, e.history)
	return out
}

// Position returns a copy of the open position for inst, if any.
func (e *Engine) Position(inst market.Instrument) (Position, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[inst]
	if !ok {
		return Position{}, false, fmt.Errorf("position: %w: %q", ErrUnknownInstrument, inst)
	}
	if pos == nil {
		return Position{}, false, nil
	}
	return *pos, true, nil
}

// OpenPositions returns copies of all open positions keyed by instrument.
func (e *Engine) OpenPositions() map[market.Instrument]Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[market.Instrument]Position)
	for inst, pos := range e.positions {
		if pos != nil {
			out[inst] = *pos
		}
	}
	return out
}

// Instruments returns the registered instruments, sorted.
func (e *Engine) Instruments() []market.Instrument {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]market.Instrument, 0, len(e.positions))
	for inst := range e.positions {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
