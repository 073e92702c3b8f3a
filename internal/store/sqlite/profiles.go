package sqlite

import (
	"context"
	"time"

	"stocktracker/internal/model"
)

// UpsertProfile stores the latest company profile for a symbol. Each fetch
// overwrites the previous row; stock_info holds one row per symbol.
func (s *Store) UpsertProfile(ctx context.Context, p model.CompanyProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_info (
			symbol, company_name, sector, industry, market_cap, pe_ratio,
			dividend_yield, beta, eps, revenue, description, website,
			employees, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			company_name   = excluded.company_name,
			sector         = excluded.sector,
			industry       = excluded.industry,
			market_cap     = excluded.market_cap,
			pe_ratio       = excluded.pe_ratio,
			dividend_yield = excluded.dividend_yield,
			beta           = excluded.beta,
			eps            = excluded.eps,
			revenue        = excluded.revenue,
			description    = excluded.description,
			website        = excluded.website,
			employees      = excluded.employees,
			updated_at     = excluded.updated_at`,
		p.Symbol, p.CompanyName, p.Sector, p.Industry, p.MarketCap, p.PERatio,
		p.DividendYield, p.Beta, p.EPS, p.Revenue, p.Description, p.Website,
		p.Employees, time.Now().UTC().Unix(),
	)
	return err
}

// Profile returns the stored profile for a symbol. sql.ErrNoRows when the
// symbol was never fetched.
func (s *Store) Profile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	var p model.CompanyProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT symbol, company_name, sector, industry, market_cap, pe_ratio,
		       dividend_yield, beta, eps, revenue, description, website,
		       employees
		FROM stock_info WHERE symbol = ?`, symbol,
	).Scan(
		&p.Symbol, &p.CompanyName, &p.Sector, &p.Industry, &p.MarketCap,
		&p.PERatio, &p.DividendYield, &p.Beta, &p.EPS, &p.Revenue,
		&p.Description, &p.Website, &p.Employees,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
