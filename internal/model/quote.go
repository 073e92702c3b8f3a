package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// Quote is a point-in-time price snapshot for one symbol. Price and
// PreviousClose may independently be absent from the provider; Change and
// ChangePercent are derived and default to 0 when PreviousClose is absent.
type Quote struct {
	Symbol        string     `json:"symbol"`
	Price         null.Float `json:"price"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"change_percent"`
	PreviousClose null.Float `json:"previous_close"`
	Open          null.Float `json:"open"`
	DayHigh       null.Float `json:"day_high"`
	DayLow        null.Float `json:"day_low"`
	Volume        int64      `json:"volume"`
	Timestamp     time.Time  `json:"timestamp"`
}

// DeriveChange fills Change and ChangePercent from Price and PreviousClose.
// A missing or zero previous close leaves both at 0 rather than producing
// a misleading value.
func (q *Quote) DeriveChange() {
	q.Change = 0
	q.ChangePercent = 0
	if !q.Price.Valid || !q.PreviousClose.Valid || q.PreviousClose.Float64 == 0 {
		return
	}
	q.Change = q.Price.Float64 - q.PreviousClose.Float64
	q.ChangePercent = q.Change / q.PreviousClose.Float64 * 100
}

// TrendingStock is one entry of the trending list, sorted by absolute
// percentage change.
type TrendingStock struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Price         null.Float `json:"price"`
	ChangePercent float64    `json:"change_percent"`
	Volume        int64      `json:"volume"`
	MarketCap     null.Float `json:"market_cap"`
}

// SearchResult is one hit of a symbol/name search.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Region   string `json:"region"`
	Currency string `json:"currency"`
}
