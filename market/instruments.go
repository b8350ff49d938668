// market/instruments.go
package market

import (
	"fmt"
	"strings"
)

// Instrument is a currency-pair symbol in slash form, e.g. "EUR/USD".
type Instrument string

func (i Instrument) String() string { return string(i) }

type Meta struct {
	Name          Instrument
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int
}

// DisplayPrecision is the number of decimals used when printing derived
// levels (stops, targets) for the instrument.
func (m Meta) DisplayPrecision() int32 {
	if m.PipLocation >= 0 {
		return 0
	}
	return int32(-m.PipLocation)
}

var Instruments = map[Instrument]Meta{
	"EUR/USD": {Name: "EUR/USD", BaseCurrency: "EUR", QuoteCurrency: "USD", PipLocation: -4},
	"GBP/USD": {Name: "GBP/USD", BaseCurrency: "GBP", QuoteCurrency: "USD", PipLocation: -4},
	"AUD/USD": {Name: "AUD/USD", BaseCurrency: "AUD", QuoteCurrency: "USD", PipLocation: -4},
	"USD/CAD": {Name: "USD/CAD", BaseCurrency: "USD", QuoteCurrency: "CAD", PipLocation: -4},
	"USD/CHF": {Name: "USD/CHF", BaseCurrency: "USD", QuoteCurrency: "CHF", PipLocation: -4},
	"NZD/USD": {Name: "NZD/USD", BaseCurrency: "NZD", QuoteCurrency: "USD", PipLocation: -4},
	"USD/JPY": {Name: "USD/JPY", BaseCurrency: "USD", QuoteCurrency: "JPY", PipLocation: -2},
	"EUR/JPY": {Name: "EUR/JPY", BaseCurrency: "EUR", QuoteCurrency: "JPY", PipLocation: -2},
}

// Lookup returns metadata for an instrument. Instruments we know nothing
// about are treated as 4-decimal pairs.
func Lookup(inst Instrument) Meta {
	if m, ok := Instruments[inst]; ok {
		return m
	}
	m := Meta{Name: inst, PipLocation: -4}
	if base, quote, ok := strings.Cut(string(inst), "/"); ok {
		m.BaseCurrency, m.QuoteCurrency = base, quote
	}
	return m
}

// Normalize accepts "EUR/USD", "EUR_USD", "eur-usd" or "EURUSD" and returns
// the slash form.
func Normalize(s string) (Instrument, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("empty instrument")
	}

	for _, sep := range []string{"/", "_", "-"} {
		if base, quote, ok := strings.Cut(s, sep); ok {
			if !isCurrency(base) || !isCurrency(quote) {
				return "", fmt.Errorf("bad instrument %q", s)
			}
			return Instrument(base + "/" + quote), nil
		}
	}

	if len(s) == 6 && isCurrency(s[:3]) && isCurrency(s[3:]) {
		return Instrument(s[:3] + "/" + s[3:]), nil
	}
	return "", fmt.Errorf("bad instrument %q", s)
}

func isCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
