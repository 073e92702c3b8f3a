package technical

import (
	"math"
	"strconv"

	"stocktracker/internal/model"
)

// ATR calculates the Average True Range with Wilder smoothing.
// True Range = max(high-low, |high-prevClose|, |low-prevClose|); the first
// bar has no previous close, so its TR is the plain high-low span.
type ATR struct {
	period    int
	count     int
	prevClose float64
	sum       float64
	current   float64
}

// NewATR creates an ATR accumulator (typically period 14).
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string { return "ATR_" + strconv.Itoa(a.period) }

func (a *ATR) Update(bar model.Bar) {
	tr := bar.High - bar.Low
	if a.count > 0 {
		tr = math.Max(tr, math.Abs(bar.High-a.prevClose))
		tr = math.Max(tr, math.Abs(bar.Low-a.prevClose))
	}
	a.prevClose = bar.Close
	a.count++

	if a.count <= a.period {
		a.sum += tr
		if a.count == a.period {
			a.current = a.sum / float64(a.period)
		}
		return
	}

	p := float64(a.period)
	a.current = (a.current*(p-1) + tr) / p
}

func (a *ATR) Value() float64 { return a.current }
func (a *ATR) Ready() bool    { return a.count >= a.period }
