package technical

import (
	"fmt"
	"math"

	"github.com/guregu/null/v5"

	"stocktracker/internal/model"
)

// Default indicator windows.
const (
	rsiPeriod       = 14
	macdFast        = 12
	macdSlow        = 26
	macdSignal      = 9
	bollPeriod      = 20
	bollMult        = 2.0
	stochKPeriod    = 14
	stochDPeriod    = 3
	williamsPeriod  = 14
	cciPeriod       = 20
	atrPeriod       = 14
	levelsPeriod    = 50
	macdWarmup      = macdSlow + macdSignal - 1 // bars before MACD is ready
	rsiRequiredBars = rsiPeriod + 1
)

// Engine computes a full indicator report from a daily bar series. It is a
// pure function of its input: no shared state, safe for concurrent use.
type Engine struct{}

// NewEngine creates a technical indicator engine.
func NewEngine() *Engine { return &Engine{} }

// Compute runs every indicator over the series and assembles the report.
// An empty series returns ErrInsufficientData; indicators whose window
// exceeds the series length degrade to unavailable slots. A non-finite
// result anywhere aborts the report with ErrComputation.
func (e *Engine) Compute(series *model.BarSeries) (*model.IndicatorReport, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrInsufficientData
	}
	n := series.Len()

	sma20, sma50, sma200 := NewSMA(20), NewSMA(50), NewSMA(200)
	ema12, ema26 := NewEMA(macdFast), NewEMA(macdSlow)
	rsi := NewRSI(rsiPeriod)
	macd := NewMACD(macdFast, macdSlow, macdSignal)
	boll := NewBollinger(bollPeriod, bollMult)
	stoch := NewStochastic(stochKPeriod, stochDPeriod)
	willr := NewWilliamsR(williamsPeriod)
	cci := NewCCI(cciPeriod)
	atr := NewATR(atrPeriod)
	levels := NewLevels(levelsPeriod)

	all := []Indicator{sma20, sma50, sma200, ema12, ema26, rsi, macd, boll, stoch, willr, cci, atr, levels}
	for _, bar := range series.Bars {
		for _, ind := range all {
			ind.Update(bar)
		}
	}

	last, _ := series.Last()
	price := last.Close

	rep := &model.IndicatorReport{
		Symbol:       series.Symbol,
		Range:        series.Range,
		AsOf:         last.Date.Format("2006-01-02"),
		CurrentPrice: round2(price),
	}

	rep.MovingAverages = movingAveragesBlock(price, sma20, sma50, sma200, ema12, ema26)
	rep.RSI = rsiBlock(rsi, n)
	rep.MACD = macdBlock(macd, n)
	rep.Bollinger = bollingerBlock(boll, price, n)
	rep.Stochastic = stochasticBlock(stoch, n)
	rep.WilliamsR = williamsBlock(willr, n)
	rep.CCI = cciBlock(cci, n)
	rep.ATR = atrBlock(atr, price, n)
	rep.Levels = model.LevelsResult{
		Support:    null.FloatFrom(round2(levels.Support())),
		Resistance: null.FloatFrom(round2(levels.Resistance())),
	}
	rep.Signals = buildSignals(rep.MovingAverages, rep.RSI, rep.MACD)

	if err := checkFinite(rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func movingAveragesBlock(price float64, sma20, sma50, sma200, ema12, ema26 Indicator) model.MovingAverages {
	ma := model.MovingAverages{}
	if sma20.Ready() {
		ma.SMA20 = null.FloatFrom(round2(sma20.Value()))
		ma.PriceVsSMA20 = aboveBelow(price, sma20.Value())
	}
	if sma50.Ready() {
		ma.SMA50 = null.FloatFrom(round2(sma50.Value()))
		ma.PriceVsSMA50 = aboveBelow(price, sma50.Value())
	}
	if sma200.Ready() {
		ma.SMA200 = null.FloatFrom(round2(sma200.Value()))
		ma.PriceVsSMA200 = aboveBelow(price, sma200.Value())
	}
	if ema12.Ready() {
		ma.EMA12 = null.FloatFrom(round2(ema12.Value()))
	}
	if ema26.Ready() {
		ma.EMA26 = null.FloatFrom(round2(ema26.Value()))
	}
	return ma
}

func rsiBlock(rsi *RSI, n int) model.RSIResult {
	if !rsi.Ready() {
		return model.RSIResult{Unavailable: needBars(rsiRequiredBars, n)}
	}
	v := rsi.Value()
	signal := model.SignalNeutral
	switch {
	case v > 70:
		signal = model.SignalOverbought
	case v < 30:
		signal = model.SignalOversold
	}
	return model.RSIResult{
		Value:          null.FloatFrom(round2(v)),
		Signal:         signal,
		Interpretation: "RSI is " + signal,
	}
}

func macdBlock(macd *MACD, n int) model.MACDResult {
	if !macd.Ready() {
		return model.MACDResult{Unavailable: needBars(macdWarmup, n)}
	}
	signal := model.SignalBearish
	if macd.Value() > macd.SignalLine() {
		signal = model.SignalBullish
	}
	return model.MACDResult{
		Line:       null.FloatFrom(round4(macd.Value())),
		SignalLine: null.FloatFrom(round4(macd.SignalLine())),
		Histogram:  null.FloatFrom(round4(macd.Histogram())),
		Signal:     signal,
	}
}

func bollingerBlock(boll *Bollinger, price float64, n int) model.BollingerResult {
	if !boll.Ready() {
		return model.BollingerResult{Unavailable: needBars(bollPeriod, n)}
	}
	upper, middle, lower := boll.Upper(), boll.Middle(), boll.Lower()
	position := model.PositionWithinBands
	switch {
	case price > upper:
		position = model.PositionAboveUpper
	case price < lower:
		position = model.PositionBelowLower
	}
	res := model.BollingerResult{
		Upper:    null.FloatFrom(round2(upper)),
		Middle:   null.FloatFrom(round2(middle)),
		Lower:    null.FloatFrom(round2(lower)),
		Position: position,
	}
	if bw, ok := boll.Bandwidth(); ok {
		res.Bandwidth = null.FloatFrom(round2(bw))
	}
	return res
}

func stochasticBlock(stoch *Stochastic, n int) model.StochasticResult {
	if !stoch.win.ready() {
		return model.StochasticResult{Unavailable: needBars(stochKPeriod, n)}
	}
	if !stoch.Ready() {
		return model.StochasticResult{Unavailable: "flat price range over lookback window"}
	}
	k := stoch.Value()
	signal := model.SignalNeutral
	switch {
	case k > 80:
		signal = model.SignalOverbought
	case k < 20:
		signal = model.SignalOversold
	}
	res := model.StochasticResult{
		KPercent: null.FloatFrom(round2(k)),
		Signal:   signal,
	}
	if d, ok := stoch.D(); ok {
		res.DPercent = null.FloatFrom(round2(d))
	}
	return res
}

func williamsBlock(willr *WilliamsR, n int) model.WilliamsRResult {
	if !willr.win.ready() {
		return model.WilliamsRResult{Unavailable: needBars(williamsPeriod, n)}
	}
	if !willr.Ready() {
		return model.WilliamsRResult{Unavailable: "flat price range over lookback window"}
	}
	v := willr.Value()
	signal := model.SignalNeutral
	switch {
	case v > -20:
		signal = model.SignalOverbought
	case v < -80:
		signal = model.SignalOversold
	}
	return model.WilliamsRResult{
		Value:  null.FloatFrom(round2(v)),
		Signal: signal,
	}
}

func cciBlock(cci *CCI, n int) model.CCIResult {
	if cci.count < cci.period {
		return model.CCIResult{Unavailable: needBars(cciPeriod, n)}
	}
	if !cci.Ready() {
		return model.CCIResult{Unavailable: "zero price deviation over lookback window"}
	}
	v := cci.Value()
	signal := model.SignalNeutral
	switch {
	case v > 100:
		signal = model.SignalOverbought
	case v < -100:
		signal = model.SignalOversold
	}
	return model.CCIResult{
		Value:  null.FloatFrom(round2(v)),
		Signal: signal,
	}
}

func atrBlock(atr *ATR, price float64, n int) model.ATRResult {
	if !atr.Ready() {
		return model.ATRResult{Unavailable: needBars(atrPeriod, n)}
	}
	res := model.ATRResult{Value: null.FloatFrom(round2(atr.Value()))}
	if price != 0 {
		res.Percent = null.FloatFrom(round2(atr.Value() / price * 100))
	}
	return res
}

// checkFinite scans every populated slot for NaN/Inf. Finding one means the
// input was well-formed but the arithmetic went bad, a hard failure.
func checkFinite(rep *model.IndicatorReport) error {
	slots := map[string]null.Float{
		"sma_20":      rep.MovingAverages.SMA20,
		"sma_50":      rep.MovingAverages.SMA50,
		"sma_200":     rep.MovingAverages.SMA200,
		"ema_12":      rep.MovingAverages.EMA12,
		"ema_26":      rep.MovingAverages.EMA26,
		"rsi":         rep.RSI.Value,
		"macd_line":   rep.MACD.Line,
		"signal_line": rep.MACD.SignalLine,
		"histogram":   rep.MACD.Histogram,
		"upper_band":  rep.Bollinger.Upper,
		"middle_band": rep.Bollinger.Middle,
		"lower_band":  rep.Bollinger.Lower,
		"bandwidth":   rep.Bollinger.Bandwidth,
		"k_percent":   rep.Stochastic.KPercent,
		"d_percent":   rep.Stochastic.DPercent,
		"williams_r":  rep.WilliamsR.Value,
		"cci":         rep.CCI.Value,
		"atr":         rep.ATR.Value,
		"atr_pct":     rep.ATR.Percent,
		"support":     rep.Levels.Support,
		"resistance":  rep.Levels.Resistance,
	}
	for name, v := range slots {
		if v.Valid && (math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0)) {
			return fmt.Errorf("%s is non-finite: %w", name, ErrComputation)
		}
	}
	if math.IsNaN(rep.CurrentPrice) || math.IsInf(rep.CurrentPrice, 0) {
		return fmt.Errorf("current price is non-finite: %w", ErrComputation)
	}
	return nil
}

func aboveBelow(price, ref float64) string {
	if price > ref {
		return "above"
	}
	return "below"
}

func needBars(want, have int) string {
	return fmt.Sprintf("requires %d bars, have %d", want, have)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
