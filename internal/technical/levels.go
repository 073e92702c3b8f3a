package technical

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"stocktracker/internal/model"
)

// Levels derives support and resistance as the 5th percentile of lows and the
// 95th percentile of highs over the trailing window (fewer bars if the series
// is shorter), using linear-interpolated quantiles.
type Levels struct {
	period int
	highs  []float64
	lows   []float64
	idx    int
	count  int
}

// NewLevels creates a support/resistance accumulator (typically period 50).
func NewLevels(period int) *Levels {
	return &Levels{
		period: period,
		highs:  make([]float64, period),
		lows:   make([]float64, period),
	}
}

func (l *Levels) Name() string { return "LEVELS" }

func (l *Levels) Update(bar model.Bar) {
	l.highs[l.idx] = bar.High
	l.lows[l.idx] = bar.Low
	l.idx = (l.idx + 1) % l.period
	l.count++
}

// Ready is true as soon as one bar has been seen.
func (l *Levels) Ready() bool { return l.count > 0 }

// Value returns the resistance level (the primary value for the Indicator
// interface); use Support and Resistance for both levels.
func (l *Levels) Value() float64 { return l.Resistance() }

// Support returns the 5th percentile of trailing lows.
func (l *Levels) Support() float64 {
	return quantile(0.05, l.window(l.lows))
}

// Resistance returns the 95th percentile of trailing highs.
func (l *Levels) Resistance() float64 {
	return quantile(0.95, l.window(l.highs))
}

func (l *Levels) window(buf []float64) []float64 {
	n := l.count
	if n > l.period {
		n = l.period
	}
	out := make([]float64, n)
	copy(out, buf[:n])
	return out
}

// quantile computes a linear-interpolated quantile; stat.Quantile requires
// ascending input.
func quantile(p float64, xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sort.Float64s(xs)
	return stat.Quantile(p, stat.LinInterp, xs, nil)
}
