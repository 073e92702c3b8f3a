package fundamental

import (
	"math"

	"github.com/guregu/null/v5"

	"stocktracker/internal/model"
)

// Every derived field is a pure function over optional inputs: a ratio is
// computed only when all required inputs are present and the divisor is
// non-zero, and is otherwise omitted. It is never defaulted to 0, since 0
// is a valid real ratio.

// div2 returns num/den rounded to 2 decimals, invalid when an input is
// absent or the divisor is zero.
func div2(num, den null.Float) null.Float { return divRound(num, den, 100) }

// div4 is div2 with 4-decimal precision, for fraction-scale ratios (ROE, ROA).
func div4(num, den null.Float) null.Float { return divRound(num, den, 10000) }

func divRound(num, den null.Float, scale float64) null.Float {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(math.Round(num.Float64/den.Float64*scale) / scale)
}

// pct returns num/den as a percentage rounded to 2 decimals.
func pct(num, den null.Float) null.Float {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(round2(num.Float64 / den.Float64 * 100))
}

// growthPct returns (current-prior)/prior as a percentage.
func growthPct(current, prior null.Float) null.Float {
	if !current.Valid || !prior.Valid || prior.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(round2((current.Float64 - prior.Float64) / prior.Float64 * 100))
}

// sub returns a-b, invalid when either operand is absent.
func sub(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return null.FloatFrom(a.Float64 - b.Float64)
}

func valuationRatios(s model.FundamentalsSnapshot) model.ValuationRatios {
	return model.ValuationRatios{
		PERatio:         div2(s.Price, s.EPS),
		PBRatio:         div2(s.Price, s.BookValuePerShare),
		PSRatio:         div2(s.Price, s.SalesPerShare),
		EVToEBITDA:      s.EVToEBITDA,
		PEGRatio:        s.PEGRatio,
		MarketCap:       s.MarketCap,
		EnterpriseValue: s.EnterpriseValue,
	}
}

func profitabilityRatios(s model.FundamentalsSnapshot) model.ProfitabilityRatios {
	return model.ProfitabilityRatios{
		ROE:             div4(s.NetIncome, s.TotalEquity),
		ROA:             div4(s.NetIncome, s.TotalAssets),
		GrossMargin:     pct(s.GrossProfit, s.Revenue),
		OperatingMargin: pct(s.OperatingIncome, s.Revenue),
		NetMargin:       pct(s.NetIncome, s.Revenue),
	}
}

func liquidityRatios(s model.FundamentalsSnapshot) model.LiquidityRatios {
	return model.LiquidityRatios{
		CurrentRatio: div2(s.CurrentAssets, s.CurrentLiabilities),
		QuickRatio:   div2(sub(s.CurrentAssets, s.Inventory), s.CurrentLiabilities),
		CashRatio:    div2(s.Cash, s.CurrentLiabilities),
	}
}

func leverageRatios(s model.FundamentalsSnapshot) model.LeverageRatios {
	return model.LeverageRatios{
		DebtToEquity: div2(s.TotalDebt, s.TotalEquity),
		DebtToAssets: div2(s.TotalDebt, s.TotalAssets),
		EquityRatio:  div2(s.TotalEquity, s.TotalAssets),
	}
}

// growthMetrics needs a prior-period snapshot; without one both deltas are
// omitted.
func growthMetrics(cur model.FundamentalsSnapshot, prior *model.FundamentalsSnapshot) model.GrowthMetrics {
	if prior == nil {
		return model.GrowthMetrics{}
	}
	return model.GrowthMetrics{
		RevenueGrowth:  growthPct(cur.Revenue, prior.Revenue),
		EarningsGrowth: growthPct(cur.NetIncome, prior.NetIncome),
	}
}

// efficiencyRatios uses revenue as a proxy for cost of goods sold in the
// inventory turnover.
func efficiencyRatios(s model.FundamentalsSnapshot) model.EfficiencyRatios {
	return model.EfficiencyRatios{
		AssetTurnover:       div2(s.Revenue, s.TotalAssets),
		InventoryTurnover:   div2(s.Revenue, s.Inventory),
		ReceivablesTurnover: div2(s.Revenue, s.Receivables),
	}
}

func dividendMetrics(s model.FundamentalsSnapshot, payments []model.DividendPayment) model.DividendMetrics {
	m := model.DividendMetrics{
		Yield:       s.DividendYield,
		Rate:        s.DividendRate,
		PayoutRatio: s.PayoutRatio,
	}

	tail := payments
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	for _, p := range tail {
		m.Recent = append(m.Recent, p.Amount)
	}

	if len(payments) >= 2 {
		latest := payments[len(payments)-1].Amount
		previous := payments[len(payments)-2].Amount
		if previous != 0 {
			m.DividendGrowth = null.FloatFrom(round2((latest - previous) / previous * 100))
		}
	}
	return m
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
