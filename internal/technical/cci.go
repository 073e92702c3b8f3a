package technical

import (
	"strconv"

	"stocktracker/internal/model"
)

// CCI calculates the Commodity Channel Index over typical prices:
// (tp - SMA(tp)) / (0.015 * meanAbsoluteDeviation). Undefined when every
// typical price in the window is identical (zero deviation).
type CCI struct {
	period int
	buf    []float64
	idx    int
	count  int
	sum    float64
	value  float64
	valid  bool
}

// NewCCI creates a CCI accumulator (typically period 20).
func NewCCI(period int) *CCI {
	return &CCI{
		period: period,
		buf:    make([]float64, period),
	}
}

func (c *CCI) Name() string { return "CCI_" + strconv.Itoa(c.period) }

func (c *CCI) Update(bar model.Bar) {
	tp := bar.TypicalPrice()
	if c.count >= c.period {
		c.sum -= c.buf[c.idx]
	}
	c.buf[c.idx] = tp
	c.sum += tp
	c.idx = (c.idx + 1) % c.period
	c.count++

	if c.count < c.period {
		return
	}

	mean := c.sum / float64(c.period)
	mad := 0.0
	for _, v := range c.buf {
		d := v - mean
		if d < 0 {
			d = -d
		}
		mad += d
	}
	mad /= float64(c.period)

	if mad == 0 {
		c.valid = false
		return
	}
	c.value = (tp - mean) / (0.015 * mad)
	c.valid = true
}

func (c *CCI) Value() float64 { return c.value }
func (c *CCI) Ready() bool    { return c.valid }
