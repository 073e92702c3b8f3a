package technical

import "stocktracker/internal/model"

// Stochastic calculates the stochastic oscillator:
// %K = (close - low_n) / (high_n - low_n) * 100, %D = SMA(dPeriod) of %K.
// A flat window (high_n == low_n) leaves %K undefined for that bar instead
// of dividing by zero.
type Stochastic struct {
	win     *extremaWindow
	d       *SMA
	k       float64
	kValid  bool
	dPushed int
}

// NewStochastic creates a stochastic accumulator (typically 14, 3).
func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	return &Stochastic{
		win: newExtremaWindow(kPeriod),
		d:   NewSMA(dPeriod),
	}
}

func (s *Stochastic) Name() string { return "STOCH" }

func (s *Stochastic) Update(bar model.Bar) {
	s.win.push(bar.High, bar.Low)
	if !s.win.ready() {
		return
	}
	hi, lo := s.win.extrema()
	if hi == lo {
		s.kValid = false
		return
	}
	s.k = (bar.Close - lo) / (hi - lo) * 100
	s.kValid = true
	s.d.push(s.k)
	s.dPushed++
}

// Value returns the current %K.
func (s *Stochastic) Value() float64 { return s.k }

// Ready reports whether the last bar produced a defined %K.
func (s *Stochastic) Ready() bool { return s.kValid }

// D returns the %D line; ok is false until enough %K values accumulated.
func (s *Stochastic) D() (float64, bool) {
	if !s.d.Ready() {
		return 0, false
	}
	return s.d.Value(), true
}
