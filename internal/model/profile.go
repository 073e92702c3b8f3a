package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// CompanyProfile is the detailed company record served by the profile
// endpoint. It is assembled live from quote and fundamentals data.
type CompanyProfile struct {
	Symbol        string      `json:"symbol"`
	CompanyName   string      `json:"company_name"`
	Sector        null.String `json:"sector"`
	Industry      null.String `json:"industry"`
	MarketCap     null.Float  `json:"market_cap"`
	PERatio       null.Float  `json:"pe_ratio"`
	DividendYield null.Float  `json:"dividend_yield"`
	Beta          null.Float  `json:"beta"`
	EPS           null.Float  `json:"eps"`
	Revenue       null.Float  `json:"revenue"`
	Description   null.String `json:"description"`
	Website       null.String `json:"website"`
	Employees     null.Int    `json:"employees"`
}

// WatchlistEntry is one persisted watchlist row.
type WatchlistEntry struct {
	ID      int64     `json:"id"`
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"added_at"`
}

// Alert types recognized by the evaluator.
const (
	AlertPriceAbove = "price_above"
	AlertPriceBelow = "price_below"
)

// Alert is a persisted price alert. TriggeredAt is set once the condition
// first holds; triggered alerts are not re-evaluated.
type Alert struct {
	ID          int64      `json:"id"`
	Symbol      string     `json:"symbol"`
	Type        string     `json:"alert_type"`
	TargetValue float64    `json:"target_value"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

// MarketStatus describes the current exchange session.
type MarketStatus struct {
	IsOpen    bool       `json:"is_open"`
	Status    string     `json:"status"`
	NextOpen  *time.Time `json:"next_open,omitempty"`
	NextClose *time.Time `json:"next_close,omitempty"`
	Timezone  string     `json:"timezone"`
}
