// Package feed provides market.TickSource implementations: in-memory
// slices, CSV files and the embedded sample datasets.
package feed

import (
	"github.com/rustyeddy/fxsim/market"
)

// Slice replays ticks held in memory.
type Slice struct {
	ticks []market.Tick
	index int
}

func NewSlice(ticks []market.Tick) *Slice {
	return &Slice{ticks: ticks}
}

func (s *Slice) Next() (market.Tick, bool, error) {
	if s.index >= len(s.ticks) {
		return market.Tick{}, false, nil
	}
	t := s.ticks[s.index]
	s.index++
	return t, true, nil
}

func (s *Slice) Close() error { return nil }

// Instruments returns the distinct instruments in order of first
// appearance.
func Instruments(ticks []market.Tick) []market.Instrument {
	seen := map[market.Instrument]bool{}
	var out []market.Instrument
	for _, t := range ticks {
		if !seen[t.Instrument] {
			seen[t.Instrument] = true
			out = append(out, t.Instrument)
		}
	}
	return out
}

// Collect drains a source into a slice and closes it.
func Collect(src market.TickSource) ([]market.Tick, error) {
	defer src.Close()

	var out []market.Tick
	for {
		t, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, t)
	}
}
