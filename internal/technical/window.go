package technical

// extremaWindow tracks the highest high and lowest low over a trailing
// window of bars. Shared by the stochastic oscillator and Williams %R.
type extremaWindow struct {
	period int
	highs  []float64
	lows   []float64
	idx    int
	count  int
}

func newExtremaWindow(period int) *extremaWindow {
	return &extremaWindow{
		period: period,
		highs:  make([]float64, period),
		lows:   make([]float64, period),
	}
}

func (w *extremaWindow) push(high, low float64) {
	w.highs[w.idx] = high
	w.lows[w.idx] = low
	w.idx = (w.idx + 1) % w.period
	w.count++
}

func (w *extremaWindow) ready() bool { return w.count >= w.period }

// extrema returns (highest high, lowest low) over the filled window.
func (w *extremaWindow) extrema() (float64, float64) {
	n := w.count
	if n > w.period {
		n = w.period
	}
	hi, lo := w.highs[0], w.lows[0]
	for i := 1; i < n; i++ {
		if w.highs[i] > hi {
			hi = w.highs[i]
		}
		if w.lows[i] < lo {
			lo = w.lows[i]
		}
	}
	return hi, lo
}
