package model

import "github.com/guregu/null/v5"

// Sentiment tags for the aggregated signal summary.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
)

// Categorical indicator signals.
const (
	SignalOverbought = "overbought"
	SignalOversold   = "oversold"
	SignalNeutral    = "neutral"
	SignalBullish    = "bullish"
	SignalBearish    = "bearish"
)

// MovingAverages reports the SMA/EMA family. A null value means the series
// was shorter than the indicator's window.
type MovingAverages struct {
	SMA20         null.Float `json:"sma_20"`
	SMA50         null.Float `json:"sma_50"`
	SMA200        null.Float `json:"sma_200"`
	EMA12         null.Float `json:"ema_12"`
	EMA26         null.Float `json:"ema_26"`
	PriceVsSMA20  string     `json:"price_vs_sma_20,omitempty"`
	PriceVsSMA50  string     `json:"price_vs_sma_50,omitempty"`
	PriceVsSMA200 string     `json:"price_vs_sma_200,omitempty"`
}

// RSIResult reports the Relative Strength Index.
type RSIResult struct {
	Value          null.Float `json:"value"`
	Signal         string     `json:"signal,omitempty"`
	Interpretation string     `json:"interpretation,omitempty"`
	Unavailable    string     `json:"unavailable,omitempty"`
}

// MACDResult reports the MACD line, signal line and histogram.
type MACDResult struct {
	Line        null.Float `json:"macd_line"`
	SignalLine  null.Float `json:"signal_line"`
	Histogram   null.Float `json:"histogram"`
	Signal      string     `json:"signal,omitempty"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// BollingerResult reports the 20-day, 2-sigma Bollinger Bands.
type BollingerResult struct {
	Upper       null.Float `json:"upper_band"`
	Middle      null.Float `json:"middle_band"`
	Lower       null.Float `json:"lower_band"`
	Position    string     `json:"position,omitempty"`
	Bandwidth   null.Float `json:"bandwidth"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// Bollinger position tags.
const (
	PositionAboveUpper  = "above_upper"
	PositionBelowLower  = "below_lower"
	PositionWithinBands = "within_bands"
)

// StochasticResult reports the stochastic oscillator %K/%D pair.
type StochasticResult struct {
	KPercent    null.Float `json:"k_percent"`
	DPercent    null.Float `json:"d_percent"`
	Signal      string     `json:"signal,omitempty"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// WilliamsRResult reports Williams %R.
type WilliamsRResult struct {
	Value       null.Float `json:"value"`
	Signal      string     `json:"signal,omitempty"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// CCIResult reports the Commodity Channel Index.
type CCIResult struct {
	Value       null.Float `json:"value"`
	Signal      string     `json:"signal,omitempty"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// ATRResult reports the Average True Range, absolute and as % of price.
type ATRResult struct {
	Value       null.Float `json:"value"`
	Percent     null.Float `json:"percentage"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// LevelsResult reports percentile-based support and resistance levels.
type LevelsResult struct {
	Support     null.Float `json:"support"`
	Resistance  null.Float `json:"resistance"`
	Unavailable string     `json:"unavailable,omitempty"`
}

// SignalSummary is the aggregated free-text signal list plus the overall
// directional sentiment.
type SignalSummary struct {
	Signals          []string `json:"signals"`
	OverallSentiment string   `json:"overall_sentiment"`
}

// IndicatorReport is the Technical Indicator Engine's output for one series.
// Individual indicator slots degrade to unavailable rather than failing the
// whole report.
type IndicatorReport struct {
	Symbol         string           `json:"symbol"`
	Range          string           `json:"range,omitempty"`
	AsOf           string           `json:"as_of"`
	CurrentPrice   float64          `json:"current_price"`
	MovingAverages MovingAverages   `json:"moving_averages"`
	RSI            RSIResult        `json:"rsi"`
	MACD           MACDResult       `json:"macd"`
	Bollinger      BollingerResult  `json:"bollinger_bands"`
	Stochastic     StochasticResult `json:"stochastic"`
	WilliamsR      WilliamsRResult  `json:"williams_r"`
	CCI            CCIResult        `json:"cci"`
	ATR            ATRResult        `json:"atr"`
	Levels         LevelsResult     `json:"support_resistance"`
	Signals        SignalSummary    `json:"signals"`
}

// ValuationRatios are pass-throughs and simple price ratios.
type ValuationRatios struct {
	PERatio         null.Float `json:"pe_ratio"`
	PBRatio         null.Float `json:"pb_ratio"`
	PSRatio         null.Float `json:"ps_ratio"`
	EVToEBITDA      null.Float `json:"ev_ebitda"`
	PEGRatio        null.Float `json:"peg_ratio"`
	MarketCap       null.Float `json:"market_cap"`
	EnterpriseValue null.Float `json:"enterprise_value"`
}

// ProfitabilityRatios: ROE/ROA are plain ratios; margins are percentages.
type ProfitabilityRatios struct {
	ROE             null.Float `json:"roe"`
	ROA             null.Float `json:"roa"`
	GrossMargin     null.Float `json:"gross_margin"`
	OperatingMargin null.Float `json:"operating_margin"`
	NetMargin       null.Float `json:"net_margin"`
}

// LiquidityRatios measure short-term solvency.
type LiquidityRatios struct {
	CurrentRatio null.Float `json:"current_ratio"`
	QuickRatio   null.Float `json:"quick_ratio"`
	CashRatio    null.Float `json:"cash_ratio"`
}

// LeverageRatios measure debt load.
type LeverageRatios struct {
	DebtToEquity null.Float `json:"debt_to_equity"`
	DebtToAssets null.Float `json:"debt_to_assets"`
	EquityRatio  null.Float `json:"equity_ratio"`
}

// GrowthMetrics are period-over-period percentages, computable only when a
// prior snapshot is supplied.
type GrowthMetrics struct {
	RevenueGrowth  null.Float `json:"revenue_growth"`
	EarningsGrowth null.Float `json:"earnings_growth"`
}

// EfficiencyRatios use revenue as a proxy for cost of goods sold.
type EfficiencyRatios struct {
	AssetTurnover       null.Float `json:"asset_turnover"`
	InventoryTurnover   null.Float `json:"inventory_turnover"`
	ReceivablesTurnover null.Float `json:"receivables_turnover"`
}

// DividendMetrics reports dividend pass-throughs and growth from the two most
// recent payouts.
type DividendMetrics struct {
	Yield          null.Float `json:"dividend_yield"`
	Rate           null.Float `json:"dividend_rate"`
	PayoutRatio    null.Float `json:"payout_ratio"`
	DividendGrowth null.Float `json:"dividend_growth"`
	Recent         []float64  `json:"recent_dividends,omitempty"`
}

// CompanyOverview is descriptive pass-through information.
type CompanyOverview struct {
	Sector    null.String `json:"sector"`
	Industry  null.String `json:"industry"`
	Country   null.String `json:"country"`
	Website   null.String `json:"website"`
	Employees null.Int    `json:"employees"`
	Summary   null.String `json:"business_summary"`
}

// HealthScore is the weighted, renormalized composite in [0,100].
type HealthScore struct {
	Score    float64 `json:"score"`
	Rating   string  `json:"rating"`
	MaxScore float64 `json:"max_score"`
}

// FundamentalReport is the Fundamental Scoring Engine's output.
type FundamentalReport struct {
	Symbol        string              `json:"symbol"`
	CompanyName   string              `json:"company_name"`
	AsOf          string              `json:"as_of"`
	Valuation     ValuationRatios     `json:"valuation"`
	Profitability ProfitabilityRatios `json:"profitability"`
	Liquidity     LiquidityRatios     `json:"liquidity"`
	Leverage      LeverageRatios      `json:"leverage"`
	Growth        GrowthMetrics       `json:"growth"`
	Efficiency    EfficiencyRatios    `json:"efficiency"`
	Dividend      DividendMetrics     `json:"dividend"`
	Overview      CompanyOverview     `json:"overview"`
	Health        HealthScore         `json:"health_score"`
}
