package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxsim/sim"
	"github.com/shopspring/decimal"
)

// SimpleMA is a streaming simple moving average over the last period prices.
type SimpleMA struct {
	period int
	window []decimal.Decimal
	sum    decimal.Decimal
}

func NewSMA(period int) (*SimpleMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: SMA period must be at least 1, got %d", sim.ErrInvalidConfiguration, period)
	}
	return &SimpleMA{
		period: period,
		window: make([]decimal.Decimal, 0, period),
	}, nil
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("SMA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
	m.sum = decimal.Zero
}

func (m *SimpleMA) Update(price decimal.Decimal) {
	m.window = append(m.window, price)
	m.sum = m.sum.Add(price)
	if len(m.window) > m.period {
		m.sum = m.sum.Sub(m.window[0])
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool {
	return len(m.window) >= m.period
}

func (m *SimpleMA) Value() decimal.Decimal {
	if !m.Ready() {
		return decimal.Zero
	}
	return m.sum.Div(decimal.NewFromInt(int64(m.period)))
}
