package technical

import (
	"strconv"

	"stocktracker/internal/model"
)

// WilliamsR calculates Williams %R:
// (high_n - close) / (high_n - low_n) * -100, bounded in [-100, 0].
// Undefined for a flat window.
type WilliamsR struct {
	win   *extremaWindow
	value float64
	valid bool
}

// NewWilliamsR creates a Williams %R accumulator (typically period 14).
func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{win: newExtremaWindow(period)}
}

func (w *WilliamsR) Name() string { return "WILLR_" + strconv.Itoa(w.win.period) }

func (w *WilliamsR) Update(bar model.Bar) {
	w.win.push(bar.High, bar.Low)
	if !w.win.ready() {
		return
	}
	hi, lo := w.win.extrema()
	if hi == lo {
		w.valid = false
		return
	}
	w.value = (hi - bar.Close) / (hi - lo) * -100
	w.valid = true
}

func (w *WilliamsR) Value() float64 { return w.value }
func (w *WilliamsR) Ready() bool    { return w.valid }
