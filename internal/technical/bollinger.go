package technical

import (
	"math"

	"stocktracker/internal/model"
)

// Bollinger calculates Bollinger Bands: middle = SMA(period) of closes,
// upper/lower = middle ± mult × population standard deviation over the same
// window.
type Bollinger struct {
	period int
	mult   float64
	buf    []float64
	idx    int
	count  int
	sum    float64
}

// NewBollinger creates a Bollinger Bands accumulator (typically 20, 2).
func NewBollinger(period int, mult float64) *Bollinger {
	return &Bollinger{
		period: period,
		mult:   mult,
		buf:    make([]float64, period),
	}
}

func (b *Bollinger) Name() string { return "BBANDS" }

func (b *Bollinger) Update(bar model.Bar) {
	if b.count >= b.period {
		b.sum -= b.buf[b.idx]
	}
	b.buf[b.idx] = bar.Close
	b.sum += bar.Close
	b.idx = (b.idx + 1) % b.period
	b.count++
}

func (b *Bollinger) Ready() bool { return b.count >= b.period }

// Value returns the middle band.
func (b *Bollinger) Value() float64 { return b.Middle() }

// Middle returns the SMA of the window.
func (b *Bollinger) Middle() float64 { return b.sum / float64(b.period) }

// StdDev returns the population standard deviation of the window.
func (b *Bollinger) StdDev() float64 {
	mean := b.Middle()
	ss := 0.0
	for _, v := range b.buf {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(b.period))
}

// Upper returns middle + mult*stddev.
func (b *Bollinger) Upper() float64 { return b.Middle() + b.mult*b.StdDev() }

// Lower returns middle - mult*stddev.
func (b *Bollinger) Lower() float64 { return b.Middle() - b.mult*b.StdDev() }

// Bandwidth returns (upper-lower)/middle*100; ok is false when the middle
// band is zero, which would make the ratio undefined.
func (b *Bollinger) Bandwidth() (float64, bool) {
	mid := b.Middle()
	if mid == 0 {
		return 0, false
	}
	return (b.Upper() - b.Lower()) / mid * 100, true
}
