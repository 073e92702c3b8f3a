package technical

import "stocktracker/internal/model"

// MACD calculates Moving Average Convergence Divergence:
// line = EMA(fast) - EMA(slow), signal = EMA(signalPeriod) of the line,
// histogram = line - signal. The signal EMA is fed only once both underlying
// EMAs are ready, so it seeds from actual MACD values.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
	line   float64
}

// NewMACD creates a MACD accumulator with the given periods (typically 12, 26, 9).
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

func (m *MACD) Name() string { return "MACD" }

func (m *MACD) Update(bar model.Bar) {
	m.fast.push(bar.Close)
	m.slow.push(bar.Close)
	if m.fast.Ready() && m.slow.Ready() {
		m.line = m.fast.Value() - m.slow.Value()
		m.signal.push(m.line)
	}
}

// Value returns the MACD line.
func (m *MACD) Value() float64 { return m.line }

// SignalLine returns the smoothed signal line.
func (m *MACD) SignalLine() float64 { return m.signal.Value() }

// Histogram returns line minus signal.
func (m *MACD) Histogram() float64 { return m.line - m.signal.Value() }

// Ready reports whether both the slow EMA and the signal EMA have seeded.
func (m *MACD) Ready() bool { return m.slow.Ready() && m.signal.Ready() }
