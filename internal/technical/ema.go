package technical

import (
	"strconv"

	"stocktracker/internal/model"
)

// EMA calculates an Exponential Moving Average seeded with the SMA of the
// first window, then EMA_t = v*k + EMA_{t-1}*(1-k) with k = 2/(period+1).
// O(1) per update, no window storage.
type EMA struct {
	period     int
	multiplier float64
	current    float64
	count      int
	sum        float64
}

// NewEMA creates an EMA accumulator with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return "EMA_" + strconv.Itoa(e.period) }

func (e *EMA) Update(bar model.Bar) { e.push(bar.Close) }

// push accepts a raw value; the MACD signal line reuses it to smooth MACD
// values instead of closes.
func (e *EMA) push(v float64) {
	e.count++
	if e.count <= e.period {
		e.sum += v
		if e.count == e.period {
			e.current = e.sum / float64(e.period)
		}
		return
	}
	e.current = v*e.multiplier + e.current*(1-e.multiplier)
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return e.count >= e.period }
