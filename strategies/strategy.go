package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/fxsim/sim"
)

// CandleDirection goes long on a bullish candle (price above the candle
// open) and exits on a bearish one.
type CandleDirection struct{}

func (CandleDirection) Name() string { return "candle" }

func (CandleDirection) Ready(q sim.Quote) bool { return true }

func (CandleDirection) Entry(q sim.Quote) bool { return q.Price.GreaterThan(q.Open) }

func (CandleDirection) Exit(q sim.Quote) bool { return q.Price.LessThan(q.Open) }

// MovingAverageTrend goes long when price is above the moving average in
// Quote.Indicator and exits when it falls below. Quotes without an
// indicator value are not ready.
type MovingAverageTrend struct {
	Period int
}

func (m MovingAverageTrend) Name() string { return fmt.Sprintf("sma(%d)", m.Period) }

func (MovingAverageTrend) Ready(q sim.Quote) bool { return q.Indicator.Valid }

func (MovingAverageTrend) Entry(q sim.Quote) bool {
	return q.Indicator.Valid && q.Price.GreaterThan(q.Indicator.Decimal)
}

func (MovingAverageTrend) Exit(q sim.Quote) bool {
	return q.Indicator.Valid && q.Price.LessThan(q.Indicator.Decimal)
}

// SignalByName builds a signal from its configuration name. period is only
// used by moving-average signals.
func SignalByName(name string, period int) (sim.Signal, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "candle", "candle-direction", "":
		return CandleDirection{}, nil

	case "sma", "ma", "sma-trend":
		if period < 1 {
			return nil, fmt.Errorf("%w: sma period must be at least 1, got %d", sim.ErrInvalidConfiguration, period)
		}
		return MovingAverageTrend{Period: period}, nil

	default:
		return nil, fmt.Errorf("%w: unknown signal %q (supported: %s)",
			sim.ErrInvalidConfiguration, name, strings.Join(Signals(), ", "))
	}
}

// Signals lists the canonical signal names.
func Signals() []string {
	out := []string{"candle", "sma"}
	sort.Strings(out)
	return out
}

// NeedsIndicator reports whether a signal reads Quote.Indicator, and the
// moving-average period it expects.
func NeedsIndicator(s sim.Signal) (int, bool) {
	if m, ok := s.(MovingAverageTrend); ok {
		return m.Period, true
	}
	return 0, false
}
