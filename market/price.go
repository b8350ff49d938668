package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a decimal price and rejects non-positive values.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad price %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be positive, got %s", s)
	}
	return d, nil
}

// FromFloat converts a float literal (config, YAML) to a decimal using
// its shortest representation, so 1.1811 stays 1.1811.
func FromFloat(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x)
}
