// Package indicators provides streaming technical indicators over decimal
// prices.
package indicators

import "github.com/shopspring/decimal"

// Indicator computes a single streaming value from successive prices.
// It is deterministic and safe to use in replays and backtests.
type Indicator interface {
	// Name returns a stable identifier like "SMA(3)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next price.
	Update(price decimal.Decimal)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	// Value returns the current value, or zero while !Ready().
	Value() decimal.Decimal
}

// Current returns the indicator value as a nullable decimal, invalid
// during warm-up.
func Current(ind Indicator) decimal.NullDecimal {
	if !ind.Ready() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: ind.Value(), Valid: true}
}
