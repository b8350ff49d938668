package sim

import "errors"

var (
	// ErrUnknownInstrument is returned for ticks on instruments the engine
	// was not constructed with.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrInvalidConfiguration covers bad strategy parameters: non-positive
	// lot size or risk fraction, or a stop placed on the wrong side of entry.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDegenerateSizing means the stop sits exactly at the entry price so
	// no risk-based volume can be computed.
	ErrDegenerateSizing = errors.New("degenerate sizing: zero stop distance")
)
