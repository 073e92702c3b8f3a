// Package provider fetches market data from the upstream data source and
// exposes it behind the MarketData interface, with an optional Redis
// cache-aside decorator.
package provider

import (
	"context"
	"errors"

	"stocktracker/internal/model"
)

// ErrNoData marks a symbol or range the upstream has no data for. Callers
// map it to a 404, unlike transport or decode failures which stay 5xx.
var ErrNoData = errors.New("provider: no data for symbol")

// Valid lookback ranges for DailyBars, in upstream range notation.
var ValidRanges = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"2y":  true,
	"5y":  true,
}

// MarketData is the read-side contract the rest of the system consumes.
// Implementations must be safe for concurrent use.
type MarketData interface {
	// Quote returns the current price snapshot for one symbol.
	Quote(ctx context.Context, symbol string) (*model.Quote, error)

	// DailyBars returns daily OHLCV bars for the given lookback range,
	// oldest first.
	DailyBars(ctx context.Context, symbol, rng string) (*model.BarSeries, error)

	// Fundamentals returns the current financial snapshot plus the prior
	// reporting period when the upstream covers it.
	Fundamentals(ctx context.Context, symbol string) (*model.FundamentalsBundle, error)

	// Dividends returns historical dividend payments, oldest first.
	Dividends(ctx context.Context, symbol string) ([]model.DividendPayment, error)
}
