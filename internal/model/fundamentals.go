package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// FundamentalsSnapshot is a sparse snapshot of company financials for one
// reporting period. Every numeric field is optional: provider coverage is
// inconsistent across symbols, and an absent field must stay distinguishable
// from a true zero.
type FundamentalsSnapshot struct {
	Symbol      string      `json:"symbol"`
	CompanyName null.String `json:"company_name"`

	// Market / per-share
	Price             null.Float `json:"price"`
	EPS               null.Float `json:"eps"`
	BookValuePerShare null.Float `json:"book_value_per_share"`
	SalesPerShare     null.Float `json:"sales_per_share"`
	MarketCap         null.Float `json:"market_cap"`
	EnterpriseValue   null.Float `json:"enterprise_value"`
	EVToEBITDA        null.Float `json:"ev_ebitda"`
	PEGRatio          null.Float `json:"peg_ratio"`
	Beta              null.Float `json:"beta"`

	// Income statement
	Revenue         null.Float `json:"revenue"`
	GrossProfit     null.Float `json:"gross_profit"`
	OperatingIncome null.Float `json:"operating_income"`
	NetIncome       null.Float `json:"net_income"`

	// Balance sheet
	TotalAssets        null.Float `json:"total_assets"`
	TotalEquity        null.Float `json:"total_equity"`
	TotalDebt          null.Float `json:"total_debt"`
	CurrentAssets      null.Float `json:"current_assets"`
	CurrentLiabilities null.Float `json:"current_liabilities"`
	Cash               null.Float `json:"cash"`
	Inventory          null.Float `json:"inventory"`
	Receivables        null.Float `json:"receivables"`

	// Dividends
	DividendYield null.Float `json:"dividend_yield"`
	DividendRate  null.Float `json:"dividend_rate"`
	PayoutRatio   null.Float `json:"payout_ratio"`

	// Company overview
	Sector    null.String `json:"sector"`
	Industry  null.String `json:"industry"`
	Country   null.String `json:"country"`
	Website   null.String `json:"website"`
	Employees null.Int    `json:"employees"`
	Summary   null.String `json:"summary"`
}

// FundamentalsBundle pairs the current snapshot with the prior reporting
// period (when the provider covers it) for growth deltas.
type FundamentalsBundle struct {
	Current FundamentalsSnapshot  `json:"current"`
	Prior   *FundamentalsSnapshot `json:"prior,omitempty"`
}

// DividendPayment is one historical dividend payout.
type DividendPayment struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}
