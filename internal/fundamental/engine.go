// Package fundamental derives financial ratio categories and a composite
// health score from sparse company fundamentals.
//
// The engine is pure: it performs no I/O and depends only on the snapshots
// it is handed. Missing inputs propagate as omitted outputs, never as zeros,
// and the health score renormalizes over whichever checks had data.
package fundamental

import (
	"time"

	"stocktracker/internal/model"
)

// Engine computes fundamental reports. It is stateless and safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Score builds the full ratio report for one company. prior may be nil when
// the provider has no prior-period financials; payments may be empty and
// must be in ascending date order.
func (e *Engine) Score(bundle model.FundamentalsBundle, payments []model.DividendPayment) *model.FundamentalReport {
	cur := bundle.Current

	rep := &model.FundamentalReport{
		Symbol:      cur.Symbol,
		CompanyName: cur.CompanyName.ValueOrZero(),
		AsOf:        time.Now().UTC().Format("2006-01-02"),

		Valuation:     valuationRatios(cur),
		Profitability: profitabilityRatios(cur),
		Liquidity:     liquidityRatios(cur),
		Leverage:      leverageRatios(cur),
		Growth:        growthMetrics(cur, bundle.Prior),
		Efficiency:    efficiencyRatios(cur),
		Dividend:      dividendMetrics(cur, payments),
		Overview: model.CompanyOverview{
			Sector:    cur.Sector,
			Industry:  cur.Industry,
			Country:   cur.Country,
			Website:   cur.Website,
			Employees: cur.Employees,
			Summary:   cur.Summary,
		},
	}

	rep.Health = computeHealth(rep)
	return rep
}
