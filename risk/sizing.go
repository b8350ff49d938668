package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
)

// DegeneratePolicy says what to do when the stop lands exactly on the
// entry price.
type DegeneratePolicy string

const (
	// DegenerateOpenZero opens the position with zero volume.
	DegenerateOpenZero DegeneratePolicy = "open-zero"
	// DegenerateReject refuses the entry with sim.ErrDegenerateSizing.
	DegenerateReject DegeneratePolicy = "reject"
)

func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch DegeneratePolicy(s) {
	case "", DegenerateOpenZero:
		return DegenerateOpenZero, nil
	case DegenerateReject:
		return DegenerateReject, nil
	}
	return "", fmt.Errorf("%w: unknown degenerate sizing policy %q", sim.ErrInvalidConfiguration, s)
}

// FixedLot trades the same volume every time and sets no stops.
type FixedLot struct {
	Lot decimal.Decimal
}

func NewFixedLot(lot float64) (FixedLot, error) {
	if err := positiveFinite("lot size", lot); err != nil {
		return FixedLot{}, err
	}
	return FixedLot{Lot: decimal.NewFromFloat(lot)}, nil
}

func (f FixedLot) Name() string { return "fixed(" + f.Lot.String() + ")" }

func (f FixedLot) Size(balance, entry, reference decimal.Decimal) (sim.Sizing, error) {
	return sim.Sizing{Volume: f.Lot}, nil
}

// RiskFraction risks a fraction of the current balance per trade. The stop
// sits StopOffset below the candle reference price and the target is
// TakeProfitMultiple times the stop distance above entry.
type RiskFraction struct {
	Fraction           decimal.Decimal
	StopOffset         decimal.Decimal
	TakeProfitMultiple decimal.Decimal
	Degenerate         DegeneratePolicy
}

func NewRiskFraction(fraction, stopOffset, tpMultiple float64, degenerate DegeneratePolicy) (RiskFraction, error) {
	if err := positiveFinite("risk fraction", fraction); err != nil {
		return RiskFraction{}, err
	}
	if fraction > 1 {
		return RiskFraction{}, fmt.Errorf("%w: risk fraction must be at most 1, got %v", sim.ErrInvalidConfiguration, fraction)
	}
	if math.IsNaN(stopOffset) || math.IsInf(stopOffset, 0) || stopOffset < 0 || stopOffset >= 1 {
		return RiskFraction{}, fmt.Errorf("%w: stop offset must be in [0, 1), got %v", sim.ErrInvalidConfiguration, stopOffset)
	}
	if err := positiveFinite("take-profit multiple", tpMultiple); err != nil {
		return RiskFraction{}, err
	}
	if degenerate == "" {
		degenerate = DegenerateOpenZero
	}
	if _, err := ParseDegeneratePolicy(string(degenerate)); err != nil {
		return RiskFraction{}, err
	}

	return RiskFraction{
		Fraction:           decimal.NewFromFloat(fraction),
		StopOffset:         decimal.NewFromFloat(stopOffset),
		TakeProfitMultiple: decimal.NewFromFloat(tpMultiple),
		Degenerate:         degenerate,
	}, nil
}

func (r RiskFraction) Name() string {
	return fmt.Sprintf("risk(%s%%, sl %s%%, tp %sR)",
		r.Fraction.Shift(2).String(), r.StopOffset.Shift(2).String(), r.TakeProfitMultiple.String())
}

// Levels returns the stop and target for an entry against reference.
func (r RiskFraction) Levels(entry, reference decimal.Decimal) (stop, target decimal.Decimal) {
	stop = reference.Mul(decimal.NewFromInt(1).Sub(r.StopOffset))
	target = entry.Add(entry.Sub(stop).Mul(r.TakeProfitMultiple))
	return stop, target
}

func (r RiskFraction) Size(balance, entry, reference decimal.Decimal) (sim.Sizing, error) {
	stop, target := r.Levels(entry, reference)
	out := sim.Sizing{
		StopLoss:   decimal.NullDecimal{Decimal: stop, Valid: true},
		TakeProfit: decimal.NullDecimal{Decimal: target, Valid: true},
	}

	dist := entry.Sub(stop)
	switch {
	case dist.IsZero():
		if r.Degenerate == DegenerateReject {
			return sim.Sizing{}, fmt.Errorf("stop %s at entry %s: %w", stop, entry, sim.ErrDegenerateSizing)
		}
		out.Volume = decimal.Zero
		return out, nil
	case dist.IsNegative():
		return sim.Sizing{}, fmt.Errorf("%w: stop %s above entry %s", sim.ErrInvalidConfiguration, stop, entry)
	}

	out.Volume = balance.Mul(r.Fraction).Div(dist)
	return out, nil
}

func positiveFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive and finite, got %v", sim.ErrInvalidConfiguration, name, v)
	}
	return nil
}
