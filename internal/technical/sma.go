package technical

import (
	"strconv"

	"stocktracker/internal/model"
)

// SMA calculates a Simple Moving Average over a rolling window of closes.
// Uses a preallocated circular buffer so Update is O(1).
type SMA struct {
	period  int
	buf     []float64
	idx     int
	count   int
	sum     float64
	current float64
}

// NewSMA creates an SMA accumulator with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Name() string { return "SMA_" + strconv.Itoa(s.period) }

func (s *SMA) Update(bar model.Bar) { s.push(bar.Close) }

// push accepts a raw value; it also backs derived series like the stochastic
// %D line, which averages %K values rather than closes.
func (s *SMA) push(v float64) {
	if s.count >= s.period {
		s.sum -= s.buf[s.idx]
	}
	s.buf[s.idx] = v
	s.sum += v
	s.idx = (s.idx + 1) % s.period
	s.count++

	if s.count >= s.period {
		s.current = s.sum / float64(s.period)
	}
}

func (s *SMA) Value() float64 { return s.current }
func (s *SMA) Ready() bool    { return s.count >= s.period }
