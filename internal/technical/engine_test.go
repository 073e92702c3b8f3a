package technical

import (
	"errors"
	"math"
	"testing"
	"time"

	"stocktracker/internal/model"
)

// ────────────────────────────────────────────────────────────
// Series fixtures
// ────────────────────────────────────────────────────────────

func series(symbol, rng string, bars []model.Bar) *model.BarSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i].Date = base.AddDate(0, 0, i)
	}
	return &model.BarSeries{Symbol: symbol, Range: rng, Bars: bars}
}

// rampBars returns n bars closing at 1, 2, ..., n.
func rampBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = bar(float64(i + 1))
	}
	return bars
}

// ────────────────────────────────────────────────────────────
// Degenerate input
// ────────────────────────────────────────────────────────────

func TestCompute_EmptySeries(t *testing.T) {
	eng := NewEngine()
	if _, err := eng.Compute(series("AAPL", "1y", nil)); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty series: err=%v, want ErrInsufficientData", err)
	}
}

func TestCompute_NilSeries(t *testing.T) {
	eng := NewEngine()
	if _, err := eng.Compute(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("nil series: err=%v, want ErrInsufficientData", err)
	}
}

func TestCompute_NonFiniteInput(t *testing.T) {
	eng := NewEngine()
	bars := []model.Bar{{High: math.Inf(1), Low: 1, Close: math.Inf(1)}}
	if _, err := eng.Compute(series("BAD", "1mo", bars)); !errors.Is(err, ErrComputation) {
		t.Errorf("infinite input: err=%v, want ErrComputation", err)
	}
}

// ────────────────────────────────────────────────────────────
// Short series: slots degrade, report survives
// ────────────────────────────────────────────────────────────

func TestCompute_ShortSeries_UnavailableSlots(t *testing.T) {
	eng := NewEngine()
	rep, err := eng.Compute(series("AAPL", "1mo", rampBars(10)))
	if err != nil {
		t.Fatal(err)
	}

	if rep.RSI.Unavailable != "requires 15 bars, have 10" {
		t.Errorf("RSI unavailable = %q", rep.RSI.Unavailable)
	}
	if rep.RSI.Value.Valid {
		t.Error("RSI value should be null for a 10-bar series")
	}
	if rep.MACD.Unavailable != "requires 34 bars, have 10" {
		t.Errorf("MACD unavailable = %q", rep.MACD.Unavailable)
	}
	if rep.Bollinger.Unavailable != "requires 20 bars, have 10" {
		t.Errorf("Bollinger unavailable = %q", rep.Bollinger.Unavailable)
	}
	if rep.ATR.Unavailable != "requires 14 bars, have 10" {
		t.Errorf("ATR unavailable = %q", rep.ATR.Unavailable)
	}
	if rep.MovingAverages.SMA20.Valid {
		t.Error("SMA20 should be null for a 10-bar series")
	}
	if rep.MovingAverages.PriceVsSMA20 != "" {
		t.Error("price-vs-SMA comparison should be empty when SMA is null")
	}

	// Support/resistance work from whatever bars exist.
	if !rep.Levels.Support.Valid || !rep.Levels.Resistance.Valid {
		t.Error("levels should be populated even for a short series")
	}
}

// ────────────────────────────────────────────────────────────
// Full report over a 300-bar ramp
// ────────────────────────────────────────────────────────────

func TestCompute_RampSeries(t *testing.T) {
	// Closes 1..300.
	// SMA20  = mean(281..300) = 290.5
	// SMA50  = mean(251..300) = 275.5
	// SMA200 = mean(101..300) = 200.5
	// RSI: every delta is a gain → 100 (overbought)
	eng := NewEngine()
	rep, err := eng.Compute(series("AAPL", "1y", rampBars(300)))
	if err != nil {
		t.Fatal(err)
	}

	if rep.Symbol != "AAPL" || rep.Range != "1y" {
		t.Errorf("identity: symbol=%q range=%q", rep.Symbol, rep.Range)
	}
	if rep.AsOf == "" {
		t.Error("as_of should be set from the last bar")
	}
	assertClose(t, "current price", rep.CurrentPrice, 300.0, 0.0001)

	assertClose(t, "SMA20", rep.MovingAverages.SMA20.Float64, 290.5, 0.0001)
	assertClose(t, "SMA50", rep.MovingAverages.SMA50.Float64, 275.5, 0.0001)
	assertClose(t, "SMA200", rep.MovingAverages.SMA200.Float64, 200.5, 0.0001)
	if rep.MovingAverages.PriceVsSMA20 != "above" || rep.MovingAverages.PriceVsSMA200 != "above" {
		t.Error("price should be above every moving average on a rising ramp")
	}

	assertClose(t, "RSI", rep.RSI.Value.Float64, 100.0, 0.0001)
	if rep.RSI.Signal != model.SignalOverbought {
		t.Errorf("RSI signal = %q, want overbought", rep.RSI.Signal)
	}

	if rep.MACD.Signal != model.SignalBullish {
		t.Errorf("MACD signal = %q, want bullish on a rising ramp", rep.MACD.Signal)
	}
	if !rep.MACD.Line.Valid || rep.MACD.Line.Float64 <= rep.MACD.SignalLine.Float64 {
		t.Error("MACD line should lead the signal line in an uptrend")
	}

	// bar() spans ±0.5, so TR settles at |high - prevClose| = 1.5.
	assertClose(t, "ATR", rep.ATR.Value.Float64, 1.5, 0.01)

	// Levels over the trailing 50 bars: lows 250.5..299.5, highs 251.5..300.5.
	// p05 index = 0.05*49 = 2.45 → 252.5 + 0.45 = 252.95
	// p95 index = 0.95*49 = 46.55 → 297.5 + 0.55 = 298.05
	assertClose(t, "support", rep.Levels.Support.Float64, 252.95, 0.01)
	assertClose(t, "resistance", rep.Levels.Resistance.Float64, 298.05, 0.01)

	if rep.Signals.OverallSentiment != model.SentimentBullish {
		t.Errorf("sentiment = %q, want bullish", rep.Signals.OverallSentiment)
	}
	if len(rep.Signals.Signals) == 0 {
		t.Error("signal list should not be empty for a strong trend")
	}
}

func TestCompute_FlatSeries_OscillatorsDegrade(t *testing.T) {
	// A perfectly flat tape: high == low == close on every bar. The
	// range-based oscillators have no range to normalize against.
	bars := make([]model.Bar, 60)
	for i := range bars {
		bars[i] = model.Bar{High: 100, Low: 100, Close: 100}
	}
	eng := NewEngine()
	rep, err := eng.Compute(series("FLAT", "3mo", bars))
	if err != nil {
		t.Fatal(err)
	}

	if rep.Stochastic.Unavailable != "flat price range over lookback window" {
		t.Errorf("stochastic unavailable = %q", rep.Stochastic.Unavailable)
	}
	if rep.WilliamsR.Unavailable != "flat price range over lookback window" {
		t.Errorf("williams unavailable = %q", rep.WilliamsR.Unavailable)
	}
	if rep.CCI.Unavailable != "zero price deviation over lookback window" {
		t.Errorf("cci unavailable = %q", rep.CCI.Unavailable)
	}

	// Bands collapse onto the price.
	assertClose(t, "bollinger upper", rep.Bollinger.Upper.Float64, 100.0, 0.0001)
	assertClose(t, "bollinger lower", rep.Bollinger.Lower.Float64, 100.0, 0.0001)
	if rep.Bollinger.Position != model.PositionWithinBands {
		t.Errorf("bollinger position = %q", rep.Bollinger.Position)
	}
	assertClose(t, "ATR flat", rep.ATR.Value.Float64, 0.0, 0.0001)
}

func TestCompute_DowntrendSentiment(t *testing.T) {
	bars := make([]model.Bar, 100)
	for i := range bars {
		bars[i] = bar(300 - float64(i))
	}
	eng := NewEngine()
	rep, err := eng.Compute(series("DOWN", "6mo", bars))
	if err != nil {
		t.Fatal(err)
	}
	if rep.RSI.Signal != model.SignalOversold {
		t.Errorf("RSI signal = %q, want oversold", rep.RSI.Signal)
	}
	if rep.MACD.Signal != model.SignalBearish {
		t.Errorf("MACD signal = %q, want bearish", rep.MACD.Signal)
	}
	if rep.Signals.OverallSentiment != model.SentimentBearish {
		t.Errorf("sentiment = %q, want bearish", rep.Signals.OverallSentiment)
	}
}

// ────────────────────────────────────────────────────────────
// Signal aggregation
// ────────────────────────────────────────────────────────────

func TestSignals_TieResolvesBearish(t *testing.T) {
	// One bullish hint (price above the key MAs) against one bearish hint
	// (MACD): the strict majority rule breaks the tie toward bearish.
	ma := model.MovingAverages{PriceVsSMA20: "above", PriceVsSMA50: "above"}
	macd := model.MACDResult{Signal: model.SignalBearish}
	rsi := model.RSIResult{Signal: model.SignalNeutral}

	sum := buildSignals(ma, rsi, macd)
	if sum.OverallSentiment != model.SentimentBearish {
		t.Errorf("tie sentiment = %q, want bearish", sum.OverallSentiment)
	}
	if len(sum.Signals) != 2 {
		t.Errorf("signal count = %d, want 2", len(sum.Signals))
	}
}

func TestSignals_NoDirectionalHints(t *testing.T) {
	// RSI buy/sell hints carry no bullish/bearish wording, so an
	// oversold-only report still lands on the bearish side of the tie.
	sum := buildSignals(model.MovingAverages{}, model.RSIResult{Signal: model.SignalOversold}, model.MACDResult{})
	if sum.OverallSentiment != model.SentimentBearish {
		t.Errorf("sentiment = %q, want bearish", sum.OverallSentiment)
	}
	if len(sum.Signals) != 1 || sum.Signals[0] != "RSI indicates potential buy opportunity" {
		t.Errorf("signals = %v", sum.Signals)
	}
}

func TestSignals_BullishMajority(t *testing.T) {
	ma := model.MovingAverages{PriceVsSMA20: "above", PriceVsSMA50: "above"}
	macd := model.MACDResult{Signal: model.SignalBullish}
	sum := buildSignals(ma, model.RSIResult{Signal: model.SignalNeutral}, macd)
	if sum.OverallSentiment != model.SentimentBullish {
		t.Errorf("sentiment = %q, want bullish", sum.OverallSentiment)
	}
}
