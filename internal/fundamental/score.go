package fundamental

import (
	"github.com/guregu/null/v5"

	"stocktracker/internal/model"
)

const healthMaxScore = 100.0

// healthCheck is one weighted criterion. A check with an absent input is
// skipped entirely: it contributes to neither the earned points nor the
// evaluable maximum, so sparse data never drags the score toward zero.
type healthCheck struct {
	value  null.Float
	weight float64
	points func(v float64) float64
}

// above awards full weight when v exceeds the threshold.
func above(threshold, weight float64) func(float64) float64 {
	return func(v float64) float64 {
		if v > threshold {
			return weight
		}
		return 0
	}
}

// between awards full weight when lo <= v <= hi.
func between(lo, hi, weight float64) func(float64) float64 {
	return func(v float64) float64 {
		if v >= lo && v <= hi {
			return weight
		}
		return 0
	}
}

// debtGrade awards graded points for leverage: full for conservatively
// financed companies, half for moderate leverage, none above 1.0.
func debtGrade(v float64) float64 {
	switch {
	case v < 0.5:
		return 20
	case v < 1.0:
		return 10
	default:
		return 0
	}
}

// computeHealth scores the report's ratios against fixed thresholds and
// renormalizes over the checks that had data, so a company missing inputs
// for some checks is graded only on the rest. Margin and growth thresholds
// are on the percentage scale the report uses (net margin > 10 means 10%).
func computeHealth(rep *model.FundamentalReport) model.HealthScore {
	checks := []healthCheck{
		{rep.Profitability.ROE, 10, above(0.15, 10)},
		{rep.Profitability.NetMargin, 10, above(10, 10)},
		{rep.Profitability.OperatingMargin, 10, above(15, 10)},
		{rep.Liquidity.CurrentRatio, 10, above(1.5, 10)},
		{rep.Liquidity.QuickRatio, 10, above(1.0, 10)},
		{rep.Leverage.DebtToEquity, 20, debtGrade},
		{rep.Growth.RevenueGrowth, 10, above(10, 10)},
		{rep.Growth.EarningsGrowth, 10, above(10, 10)},
		{rep.Valuation.PERatio, 10, between(10, 20, 10)},
	}

	var earned, evaluable float64
	for _, c := range checks {
		if !c.value.Valid {
			continue
		}
		evaluable += c.weight
		earned += c.points(c.value.Float64)
	}

	if evaluable == 0 {
		return model.HealthScore{Score: 0, Rating: ratingFor(0), MaxScore: healthMaxScore}
	}

	score := round1(earned / evaluable * healthMaxScore)
	return model.HealthScore{Score: score, Rating: ratingFor(score), MaxScore: healthMaxScore}
}

func ratingFor(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}
