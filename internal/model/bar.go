package model

import "time"

// Bar represents one trading day of OHLCV data for a single symbol.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TypicalPrice returns (high + low + close) / 3, used by CCI.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3.0
}

// BarSeries is an ordered (date-ascending) sequence of daily bars for one
// symbol and one lookback range.
type BarSeries struct {
	Symbol string `json:"symbol"`
	Range  string `json:"range"`
	Bars   []Bar  `json:"data"`
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar. ok is false for an empty series.
func (s *BarSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Tail returns up to the last n bars without copying.
func (s *BarSeries) Tail(n int) []Bar {
	if len(s.Bars) <= n {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}
