package sim_test

import (
	"math/rand"
	"testing"

	"github.com/rustyeddy/fxsim/market"
	"github.com/rustyeddy/fxsim/risk"
	"github.com/rustyeddy/fxsim/sim"
	"github.com/rustyeddy/fxsim/strategies"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var pairs = []market.Instrument{"EUR/USD", "GBP/USD", "USD/JPY"}

func tick(inst market.Instrument, date, open, price string) sim.Quote {
	return sim.Quote{Instrument: inst, Date: date, Open: d(open), Price: d(price)}
}

func smaTick(date, price, ma string) sim.Quote {
	q := sim.Quote{Instrument: "EUR/USD", Date: date, Open: d(price), Price: d(price)}
	if ma != "" {
		q.Indicator = decimal.NullDecimal{Decimal: d(ma), Valid: true}
	}
	return q
}

func fixedEngine(t *testing.T, lot float64) *sim.Engine {
	t.Helper()
	sizer, err := risk.NewFixedLot(lot)
	require.NoError(t, err)
	e, err := sim.NewEngine(d("10000"), pairs, sim.Strategy{Signal: strategies.CandleDirection{}, Sizer: sizer})
	require.NoError(t, err)
	return e
}

func riskEngine(t *testing.T, signal sim.Signal, offset float64, policy risk.DegeneratePolicy) *sim.Engine {
	t.Helper()
	sizer, err := risk.NewRiskFraction(0.10, offset, 2.0, policy)
	require.NoError(t, err)
	e, err := sim.NewEngine(d("10000"), pairs, sim.Strategy{Signal: signal, Sizer: sizer})
	require.NoError(t, err)
	return e
}

func mustProcess(t *testing.T, e *sim.Engine, q sim.Quote) *sim.Event {
	t.Helper()
	ev, err := e.ProcessTick(q)
	require.NoError(t, err)
	return ev
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	sizer, err := risk.NewFixedLot(1000)
	require.NoError(t, err)
	strat := sim.Strategy{Signal: strategies.CandleDirection{}, Sizer: sizer}

	tests := []struct {
		name    string
		balance string
		insts   []market.Instrument
		strat   sim.Strategy
	}{
		{"zero balance", "0", pairs, strat},
		{"negative balance", "-5", pairs, strat},
		{"no instruments", "10000", nil, strat},
		{"duplicate instrument", "10000", []market.Instrument{"EUR/USD", "EUR/USD"}, strat},
		{"no signal", "10000", pairs, sim.Strategy{Sizer: sizer}},
		{"no sizer", "10000", pairs, sim.Strategy{Signal: strategies.CandleDirection{}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := sim.NewEngine(d(tt.balance), tt.insts, tt.strat)
			assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
		})
	}
}

func TestEngine_Accessors(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)
	assert.True(t, e.Balance().Equal(d("10000")))
	assert.True(t, e.InitialBalance().Equal(d("10000")))
	assert.Empty(t, e.History())
	assert.Empty(t, e.OpenPositions())
	assert.Equal(t, []market.Instrument{"EUR/USD", "GBP/USD", "USD/JPY"}, e.Instruments())
	assert.Equal(t, "candle/fixed(20000)", e.Strategy().String())

	_, _, err := e.Position("XAU/USD")
	assert.ErrorIs(t, err, sim.ErrUnknownInstrument)
}

func TestEngine_UnknownInstrument(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)
	ev, err := e.ProcessTick(tick("USD/CHF", "Feb 25", "0.9", "0.91"))
	assert.ErrorIs(t, err, sim.ErrUnknownInstrument)
	assert.Nil(t, ev)
	assert.Empty(t, e.OpenPositions())
}

func TestEngine_FixedLotOpenClose(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)

	ev := mustProcess(t, e, tick("EUR/USD", "Feb 25", "1.1773", "1.1811"))
	require.NotNil(t, ev)
	assert.Equal(t, sim.EventOpened, ev.Kind)
	assert.Equal(t, market.Instrument("EUR/USD"), ev.Instrument)
	assert.Equal(t, "Feb 25", ev.Date)
	assert.True(t, ev.Price.Equal(d("1.1811")))
	assert.True(t, ev.Volume.Equal(d("20000")))
	assert.False(t, ev.StopLoss.Valid)

	pos, open, err := e.Position("EUR/USD")
	require.NoError(t, err)
	require.True(t, open)
	assert.True(t, pos.EntryPrice.Equal(d("1.1811")))
	assert.Equal(t, "Feb 25", pos.EntryDate)

	ev = mustProcess(t, e, tick("EUR/USD", "Feb 26", "1.1816", "1.1795"))
	require.NotNil(t, ev)
	assert.Equal(t, sim.EventClosed, ev.Kind)
	assert.Equal(t, sim.SignalReversal, ev.Reason)
	assert.True(t, ev.Profit.Equal(d("-32")), "profit %s", ev.Profit)

	assert.True(t, e.Balance().Equal(d("9968")))
	hist := e.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "Feb 26", hist[0].Date)
	assert.Equal(t, "Feb 25", hist[0].EntryDate)
	assert.True(t, hist[0].ExitPrice.Equal(d("1.1795")))
	assert.NotEmpty(t, hist[0].ID)
	assert.False(t, hist[0].Win())
	require.NotNil(t, ev.Trade)
	assert.Equal(t, hist[0], *ev.Trade)

	_, open, err = e.Position("EUR/USD")
	require.NoError(t, err)
	assert.False(t, open)
}

func TestEngine_NoDoubleOpenNoPhantomClose(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)

	// bearish with nothing open: silent
	assert.Nil(t, mustProcess(t, e, tick("EUR/USD", "d1", "1.1816", "1.1795")))
	assert.Empty(t, e.History())

	require.NotNil(t, mustProcess(t, e, tick("EUR/USD", "d2", "1.1773", "1.1811")))

	// bullish again while open: hold, entry price unchanged
	assert.Nil(t, mustProcess(t, e, tick("EUR/USD", "d3", "1.1800", "1.1850")))
	pos, _, err := e.Position("EUR/USD")
	require.NoError(t, err)
	assert.True(t, pos.EntryPrice.Equal(d("1.1811")))
	assert.Len(t, e.OpenPositions(), 1)
}

func TestEngine_InstrumentsAreIndependent(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)
	require.NotNil(t, mustProcess(t, e, tick("USD/JPY", "Feb 25", "149.50", "150.20")))
	assert.Nil(t, mustProcess(t, e, tick("EUR/USD", "Feb 25", "1.1816", "1.1795")))
	require.NotNil(t, mustProcess(t, e, tick("GBP/USD", "Feb 25", "1.2510", "1.2580")))

	assert.Len(t, e.OpenPositions(), 2)

	ev := mustProcess(t, e, tick("USD/JPY", "Feb 26", "150.25", "149.80"))
	require.NotNil(t, ev)
	assert.True(t, ev.Profit.Equal(d("-8000")))
	assert.Len(t, e.OpenPositions(), 1)
}

func TestEngine_NewsSkip(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)

	news := tick("EUR/USD", "Feb 25", "1.1773", "1.1811")
	news.News = true

	for i := 0; i < 2; i++ {
		ev := mustProcess(t, e, news)
		require.NotNil(t, ev)
		assert.Equal(t, sim.EventSkipped, ev.Kind)
		assert.Empty(t, e.OpenPositions())
		assert.True(t, e.Balance().Equal(d("10000")))
	}

	// with a position open a bearish news tick does not close it
	require.NotNil(t, mustProcess(t, e, tick("EUR/USD", "Feb 26", "1.1773", "1.1811")))
	bear := tick("EUR/USD", "Feb 27", "1.1816", "1.1700")
	bear.News = true
	ev := mustProcess(t, e, bear)
	require.NotNil(t, ev)
	assert.Equal(t, sim.EventSkipped, ev.Kind)
	assert.Len(t, e.OpenPositions(), 1)
	assert.Empty(t, e.History())
}

func TestEngine_SilentTickIsSideEffectFree(t *testing.T) {
	t.Parallel()

	e := fixedEngine(t, 20000)
	require.NotNil(t, mustProcess(t, e, tick("EUR/USD", "d1", "1.1773", "1.1811")))

	hold := tick("EUR/USD", "d2", "1.1800", "1.1800")
	before := e.OpenPositions()
	for i := 0; i < 2; i++ {
		assert.Nil(t, mustProcess(t, e, hold))
		assert.Equal(t, before, e.OpenPositions())
		assert.True(t, e.Balance().Equal(d("10000")))
		assert.Empty(t, e.History())
	}
}

func TestEngine_RiskManagedExits(t *testing.T) {
	t.Parallel()

	// entry 1.2000 off open 1.1900: stop 1.18405, target 1.2319
	entry := tick("EUR/USD", "d1", "1.1900", "1.2000")

	tests := []struct {
		name   string
		next   sim.Quote
		reason sim.CloseReason
		closed bool
	}{
		{"stop loss beats reversal", tick("EUR/USD", "d2", "1.1850", "1.1800"), sim.StopLoss, true},
		{"stop loss at the level", tick("EUR/USD", "d2", "1.1800", "1.18405"), sim.StopLoss, true},
		{"take profit beats reversal", tick("EUR/USD", "d2", "1.2500", "1.2400"), sim.TakeProfit, true},
		{"take profit on bullish tick", tick("EUR/USD", "d2", "1.2100", "1.2319"), sim.TakeProfit, true},
		{"signal reversal", tick("EUR/USD", "d2", "1.1990", "1.1950"), sim.SignalReversal, true},
		{"hold", tick("EUR/USD", "d2", "1.2050", "1.2100"), "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := riskEngine(t, strategies.CandleDirection{}, 0.005, risk.DegenerateOpenZero)
			opened := mustProcess(t, e, entry)
			require.NotNil(t, opened)
			require.True(t, opened.StopLoss.Valid)
			assert.True(t, opened.StopLoss.Decimal.Equal(d("1.18405")))
			assert.True(t, opened.TakeProfit.Decimal.Equal(d("1.2319")))

			ev := mustProcess(t, e, tt.next)
			if !tt.closed {
				assert.Nil(t, ev)
				assert.Len(t, e.OpenPositions(), 1)
				return
			}

			require.NotNil(t, ev)
			assert.Equal(t, sim.EventClosed, ev.Kind)
			assert.Equal(t, tt.reason, ev.Reason)

			want := tt.next.Price.Sub(d("1.2000")).Mul(opened.Volume)
			assert.True(t, ev.Profit.Equal(want))
			assert.True(t, e.Balance().Equal(d("10000").Add(want)))
		})
	}
}

func TestEngine_VolumeFixedAtOpen(t *testing.T) {
	t.Parallel()

	e := riskEngine(t, strategies.CandleDirection{}, 0.005, risk.DegenerateOpenZero)

	// first trade loses, shrinking the balance
	jpy := mustProcess(t, e, tick("USD/JPY", "d1", "149.50", "150.20"))
	eur := mustProcess(t, e, tick("EUR/USD", "d1", "1.1900", "1.2000"))
	require.NotNil(t, jpy)
	require.NotNil(t, eur)

	closed := mustProcess(t, e, tick("USD/JPY", "d2", "150.25", "149.80"))
	require.NotNil(t, closed)
	assert.True(t, closed.Profit.IsNegative())

	// the EUR position keeps the volume it was sized with
	ev := mustProcess(t, e, tick("EUR/USD", "d2", "1.1990", "1.1950"))
	require.NotNil(t, ev)
	assert.True(t, ev.Volume.Equal(eur.Volume))
	assert.True(t, ev.Profit.Equal(d("-0.005").Mul(eur.Volume)))
}

func TestEngine_MovingAverageWarmup(t *testing.T) {
	t.Parallel()

	sizer, err := risk.NewFixedLot(100000)
	require.NoError(t, err)
	e, err := sim.NewEngine(d("10000"), []market.Instrument{"EUR/USD"},
		sim.Strategy{Signal: strategies.MovingAverageTrend{Period: 3}, Sizer: sizer})
	require.NoError(t, err)

	for _, q := range []sim.Quote{smaTick("Feb 17", "1.1855", ""), smaTick("Feb 18", "1.1784", "")} {
		ev := mustProcess(t, e, q)
		require.NotNil(t, ev)
		assert.Equal(t, sim.EventWarmup, ev.Kind)
	}

	// price below the average with nothing open
	assert.Nil(t, mustProcess(t, e, smaTick("Feb 19", "1.1774", "1.18043")))

	ev := mustProcess(t, e, smaTick("Feb 20", "1.1782", "1.1780"))
	require.NotNil(t, ev)
	assert.Equal(t, sim.EventOpened, ev.Kind)

	assert.Nil(t, mustProcess(t, e, smaTick("Feb 23", "1.1786", "1.178067")))

	ev = mustProcess(t, e, smaTick("Feb 24", "1.1772", "1.1780"))
	require.NotNil(t, ev)
	assert.Equal(t, sim.EventClosed, ev.Kind)
	assert.Equal(t, sim.SignalReversal, ev.Reason)
	assert.True(t, ev.Profit.Equal(d("-100")))
	assert.True(t, e.Balance().Equal(d("9900")))
}

func TestEngine_DegenerateSizing(t *testing.T) {
	t.Parallel()

	// stop offset 0 against an open equal to the price puts the stop on entry
	q := sim.Quote{
		Instrument: "EUR/USD",
		Date:       "d1",
		Open:       d("1.2"),
		Price:      d("1.2"),
		Indicator:  decimal.NullDecimal{Decimal: d("1.1"), Valid: true},
	}

	t.Run("open zero", func(t *testing.T) {
		t.Parallel()
		e := riskEngine(t, strategies.MovingAverageTrend{Period: 3}, 0, risk.DegenerateOpenZero)

		ev := mustProcess(t, e, q)
		require.NotNil(t, ev)
		assert.Equal(t, sim.EventOpened, ev.Kind)
		assert.True(t, ev.Volume.IsZero())

		exit := q
		exit.Date = "d2"
		exit.Price = d("1.05")
		ev = mustProcess(t, e, exit)
		require.NotNil(t, ev)
		assert.Equal(t, sim.StopLoss, ev.Reason)
		assert.True(t, ev.Profit.IsZero())
		assert.True(t, e.Balance().Equal(d("10000")))
	})

	t.Run("reject", func(t *testing.T) {
		t.Parallel()
		e := riskEngine(t, strategies.MovingAverageTrend{Period: 3}, 0, risk.DegenerateReject)

		ev, err := e.ProcessTick(q)
		assert.ErrorIs(t, err, sim.ErrDegenerateSizing)
		assert.Nil(t, ev)
		assert.Empty(t, e.OpenPositions())
	})
}

func TestEngine_StopOnWrongSide(t *testing.T) {
	t.Parallel()

	e := riskEngine(t, strategies.MovingAverageTrend{Period: 3}, 0.005, risk.DegenerateOpenZero)
	q := sim.Quote{
		Instrument: "EUR/USD",
		Date:       "d1",
		Open:       d("1.3"),
		Price:      d("1.2"),
		Indicator:  decimal.NullDecimal{Decimal: d("1.1"), Valid: true},
	}

	ev, err := e.ProcessTick(q)
	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
	assert.Nil(t, ev)
	assert.Empty(t, e.OpenPositions())
}

func TestEngine_RandomWalkInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	engines := map[string]*sim.Engine{
		"fixed": fixedEngine(t, 20000),
		"risk":  riskEngine(t, strategies.CandleDirection{}, 0.005, risk.DegenerateOpenZero),
	}

	for name, e := range engines {
		last := map[market.Instrument]decimal.Decimal{
			"EUR/USD": d("1.1800"), "GBP/USD": d("1.2500"), "USD/JPY": d("150.00"),
		}

		for i := 0; i < 500; i++ {
			inst := pairs[rng.Intn(len(pairs))]
			open := last[inst]
			move := decimal.NewFromInt(int64(rng.Intn(41) - 20)).Mul(open).Div(decimal.NewFromInt(10000))
			price := open.Add(move)
			last[inst] = price

			q := sim.Quote{Instrument: inst, Date: "t", Open: open, Price: price, News: rng.Intn(10) == 0}
			before := len(e.History())
			ev, err := e.ProcessTick(q)
			require.NoError(t, err, name)

			if q.News {
				require.NotNil(t, ev)
				assert.Equal(t, sim.EventSkipped, ev.Kind)
				assert.Len(t, e.History(), before)
			}

			assert.LessOrEqual(t, len(e.OpenPositions()), len(pairs))

			sum := decimal.Zero
			for _, tr := range e.History() {
				sum = sum.Add(tr.Profit)
			}
			assert.True(t, e.Balance().Sub(e.InitialBalance()).Equal(sum), "%s: balance drift at tick %d", name, i)
		}
	}
}

func TestEventKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "skipped", sim.EventSkipped.String())
	assert.Equal(t, "warmup", sim.EventWarmup.String())
	assert.Equal(t, "opened", sim.EventOpened.String())
	assert.Equal(t, "closed", sim.EventClosed.String())
	assert.Equal(t, "unknown", sim.EventKind(0).String())
}

func TestRealizedPL(t *testing.T) {
	t.Parallel()

	assert.True(t, sim.RealizedPL(d("1.1811"), d("1.1795"), d("20000")).Equal(d("-32")))
	assert.True(t, sim.RealizedPL(d("150.20"), d("149.80"), d("20000")).Equal(d("-8000")))
	assert.True(t, sim.RealizedPL(d("0.6510"), d("0.6535"), d("20000")).Equal(d("50")))
}
