package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/guregu/null/v5"

	"stocktracker/internal/model"
)

const quoteSummaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile,incomeStatementHistory,balanceSheetHistory"

// yahooNumber is the upstream's {"raw": n, "fmt": "..."} wrapper. Only the
// raw value matters; an absent wrapper stays invalid.
type yahooNumber struct {
	Raw null.Float `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *yahooError          `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		LongName           null.String `json:"longName"`
		ShortName          null.String `json:"shortName"`
		RegularMarketPrice yahooNumber `json:"regularMarketPrice"`
		MarketCap          yahooNumber `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		DividendYield yahooNumber `json:"dividendYield"`
		DividendRate  yahooNumber `json:"dividendRate"`
		PayoutRatio   yahooNumber `json:"payoutRatio"`
		Beta          yahooNumber `json:"beta"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		TrailingEps        yahooNumber `json:"trailingEps"`
		BookValue          yahooNumber `json:"bookValue"`
		EnterpriseValue    yahooNumber `json:"enterpriseValue"`
		EnterpriseToEbitda yahooNumber `json:"enterpriseToEbitda"`
		PegRatio           yahooNumber `json:"pegRatio"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		TotalRevenue    yahooNumber `json:"totalRevenue"`
		RevenuePerShare yahooNumber `json:"revenuePerShare"`
		TotalCash       yahooNumber `json:"totalCash"`
		TotalDebt       yahooNumber `json:"totalDebt"`
	} `json:"financialData"`
	AssetProfile struct {
		Sector              null.String `json:"sector"`
		Industry            null.String `json:"industry"`
		Country             null.String `json:"country"`
		Website             null.String `json:"website"`
		FullTimeEmployees   null.Int    `json:"fullTimeEmployees"`
		LongBusinessSummary null.String `json:"longBusinessSummary"`
	} `json:"assetProfile"`
	IncomeStatementHistory struct {
		Statements []incomeStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
	BalanceSheetHistory struct {
		Statements []balanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
}

// Statement histories arrive newest first.
type incomeStatement struct {
	TotalRevenue    yahooNumber `json:"totalRevenue"`
	GrossProfit     yahooNumber `json:"grossProfit"`
	OperatingIncome yahooNumber `json:"operatingIncome"`
	NetIncome       yahooNumber `json:"netIncome"`
}

type balanceSheet struct {
	TotalAssets             yahooNumber `json:"totalAssets"`
	TotalStockholderEquity  yahooNumber `json:"totalStockholderEquity"`
	TotalCurrentAssets      yahooNumber `json:"totalCurrentAssets"`
	TotalCurrentLiabilities yahooNumber `json:"totalCurrentLiabilities"`
	Cash                    yahooNumber `json:"cash"`
	Inventory               yahooNumber `json:"inventory"`
	NetReceivables          yahooNumber `json:"netReceivables"`
	ShortLongTermDebt       yahooNumber `json:"shortLongTermDebt"`
	LongTermDebt            yahooNumber `json:"longTermDebt"`
}

// Fundamentals assembles a sparse snapshot from the quoteSummary modules.
// The prior period is populated when the upstream ships at least two annual
// statements; otherwise Prior stays nil and growth metrics are omitted
// downstream.
func (c *YahooClient) Fundamentals(ctx context.Context, symbol string) (*model.FundamentalsBundle, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), quoteSummaryModules)

	var qs quoteSummaryResponse
	if err := c.getJSON(ctx, u, &qs); err != nil {
		return nil, err
	}
	if qs.QuoteSummary.Error != nil {
		if qs.QuoteSummary.Error.Code == "Not Found" {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}
	r := qs.QuoteSummary.Result[0]

	cur := model.FundamentalsSnapshot{
		Symbol:      strings.ToUpper(symbol),
		CompanyName: firstValidStr(r.Price.LongName, r.Price.ShortName),

		Price:             r.Price.RegularMarketPrice.Raw,
		EPS:               r.DefaultKeyStatistics.TrailingEps.Raw,
		BookValuePerShare: r.DefaultKeyStatistics.BookValue.Raw,
		SalesPerShare:     r.FinancialData.RevenuePerShare.Raw,
		MarketCap:         r.Price.MarketCap.Raw,
		EnterpriseValue:   r.DefaultKeyStatistics.EnterpriseValue.Raw,
		EVToEBITDA:        r.DefaultKeyStatistics.EnterpriseToEbitda.Raw,
		PEGRatio:          r.DefaultKeyStatistics.PegRatio.Raw,
		Beta:              r.SummaryDetail.Beta.Raw,

		Revenue:   r.FinancialData.TotalRevenue.Raw,
		TotalDebt: r.FinancialData.TotalDebt.Raw,
		Cash:      r.FinancialData.TotalCash.Raw,

		DividendYield: r.SummaryDetail.DividendYield.Raw,
		DividendRate:  r.SummaryDetail.DividendRate.Raw,
		PayoutRatio:   r.SummaryDetail.PayoutRatio.Raw,

		Sector:    r.AssetProfile.Sector,
		Industry:  r.AssetProfile.Industry,
		Country:   r.AssetProfile.Country,
		Website:   r.AssetProfile.Website,
		Employees: r.AssetProfile.FullTimeEmployees,
		Summary:   r.AssetProfile.LongBusinessSummary,
	}

	income := r.IncomeStatementHistory.Statements
	balance := r.BalanceSheetHistory.Statements
	if len(income) > 0 {
		applyIncome(&cur, income[0])
	}
	if len(balance) > 0 {
		applyBalance(&cur, balance[0])
	}

	bundle := &model.FundamentalsBundle{Current: cur}
	if len(income) > 1 || len(balance) > 1 {
		prior := model.FundamentalsSnapshot{Symbol: cur.Symbol}
		if len(income) > 1 {
			applyIncome(&prior, income[1])
		}
		if len(balance) > 1 {
			applyBalance(&prior, balance[1])
		}
		bundle.Prior = &prior
	}
	return bundle, nil
}

func applyIncome(s *model.FundamentalsSnapshot, st incomeStatement) {
	if st.TotalRevenue.Raw.Valid {
		s.Revenue = st.TotalRevenue.Raw
	}
	s.GrossProfit = st.GrossProfit.Raw
	s.OperatingIncome = st.OperatingIncome.Raw
	s.NetIncome = st.NetIncome.Raw
}

func applyBalance(s *model.FundamentalsSnapshot, b balanceSheet) {
	s.TotalAssets = b.TotalAssets.Raw
	s.TotalEquity = b.TotalStockholderEquity.Raw
	s.CurrentAssets = b.TotalCurrentAssets.Raw
	s.CurrentLiabilities = b.TotalCurrentLiabilities.Raw
	s.Inventory = b.Inventory.Raw
	s.Receivables = b.NetReceivables.Raw
	if !s.Cash.Valid {
		s.Cash = b.Cash.Raw
	}
	if !s.TotalDebt.Valid {
		s.TotalDebt = sumValid(b.ShortLongTermDebt.Raw, b.LongTermDebt.Raw)
	}
}

// sumValid adds the valid operands, invalid when none are.
func sumValid(vals ...null.Float) null.Float {
	var total float64
	any := false
	for _, v := range vals {
		if v.Valid {
			total += v.Float64
			any = true
		}
	}
	if !any {
		return null.Float{}
	}
	return null.FloatFrom(total)
}

func firstValidStr(vals ...null.String) null.String {
	for _, v := range vals {
		if v.Valid && v.String != "" {
			return v
		}
	}
	return null.String{}
}
