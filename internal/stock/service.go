// Package stock is the service layer tying the provider, the analysis
// engines and the persistence together behind symbol-keyed operations.
package stock

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/guregu/null/v5"

	"stocktracker/internal/fundamental"
	"stocktracker/internal/markethours"
	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
	"stocktracker/internal/provider"
	"stocktracker/internal/store/sqlite"
	"stocktracker/internal/technical"
)

var (
	ErrInvalidSymbol = errors.New("stock: invalid symbol")
	ErrInvalidRange  = errors.New("stock: invalid range")
)

// Symbols as the upstream knows them: tickers plus index (^GSPC) and
// class-share (BRK-B) notation.
var symbolRe = regexp.MustCompile(`^[A-Z0-9.^-]{1,10}$`)

// Service implements the stock operations. Safe for concurrent use.
type Service struct {
	data     provider.MarketData
	store    *sqlite.Store
	tech     *technical.Engine
	fund     *fundamental.Engine
	mets     *metrics.Metrics
	health   *metrics.HealthStatus
	recordCh chan<- model.Quote

	mu       sync.RWMutex
	trending []model.TrendingStock
}

// NewService wires the service. recordCh may be nil to disable price
// recording.
func NewService(data provider.MarketData, store *sqlite.Store, mets *metrics.Metrics, health *metrics.HealthStatus, recordCh chan<- model.Quote) *Service {
	return &Service{
		data:     data,
		store:    store,
		tech:     technical.NewEngine(),
		fund:     fundamental.NewEngine(),
		mets:     mets,
		health:   health,
		recordCh: recordCh,
	}
}

// NormalizeSymbol uppercases and validates a raw symbol.
func NormalizeSymbol(raw string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolRe.MatchString(sym) {
		return "", ErrInvalidSymbol
	}
	return sym, nil
}

// CurrentPrice returns the live quote and hands it to the price recorder.
// Recording is fire-and-forget: a full channel drops the observation rather
// than delaying the response.
func (s *Service) CurrentPrice(ctx context.Context, symbol string) (*model.Quote, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	q, err := s.data.Quote(ctx, sym)
	if err != nil {
		return nil, err
	}
	s.health.SetProviderOK(time.Now())

	if s.recordCh != nil {
		select {
		case s.recordCh <- *q:
		default:
		}
	}
	return q, nil
}

// History returns daily bars for the lookback range; rng defaults to 1y.
func (s *Service) History(ctx context.Context, symbol, rng string) (*model.BarSeries, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if rng == "" {
		rng = "1y"
	}
	if !provider.ValidRanges[rng] {
		return nil, ErrInvalidRange
	}
	series, err := s.data.DailyBars(ctx, sym, rng)
	if err != nil {
		return nil, err
	}
	s.health.SetProviderOK(time.Now())
	return series, nil
}

// TechnicalReport computes the indicator report over the range's bars.
func (s *Service) TechnicalReport(ctx context.Context, symbol, rng string) (*model.IndicatorReport, error) {
	series, err := s.History(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rep, err := s.tech.Compute(series)
	s.mets.TechnicalComputeDur.Observe(time.Since(start).Seconds())
	return rep, err
}

// FundamentalReport scores the company's financials. Missing dividend
// history degrades to an empty dividend block rather than failing the
// report.
func (s *Service) FundamentalReport(ctx context.Context, symbol string) (*model.FundamentalReport, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	bundle, err := s.data.Fundamentals(ctx, sym)
	if err != nil {
		return nil, err
	}
	s.health.SetProviderOK(time.Now())

	payments, err := s.data.Dividends(ctx, sym)
	if err != nil {
		log.Printf("[stock] dividends %s: %v", sym, err)
		payments = nil
	}

	start := time.Now()
	rep := s.fund.Score(*bundle, payments)
	s.mets.FundamentalComputeDur.Observe(time.Since(start).Seconds())
	return rep, nil
}

// Profile condenses the fundamentals snapshot into the company profile.
// Each successful fetch is upserted into stock_info; when the provider is
// down, the last stored profile is served instead.
func (s *Service) Profile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	bundle, err := s.data.Fundamentals(ctx, sym)
	if err != nil {
		if stored, serr := s.store.Profile(ctx, sym); serr == nil {
			log.Printf("[stock] profile %s: serving stored copy, provider: %v", sym, err)
			return stored, nil
		}
		return nil, err
	}
	s.health.SetProviderOK(time.Now())

	snap := bundle.Current
	pe := null.Float{}
	if snap.Price.Valid && snap.EPS.Valid && snap.EPS.Float64 != 0 {
		pe = null.FloatFrom(snap.Price.Float64 / snap.EPS.Float64)
	}

	profile := &model.CompanyProfile{
		Symbol:        sym,
		CompanyName:   snap.CompanyName.ValueOrZero(),
		Sector:        snap.Sector,
		Industry:      snap.Industry,
		MarketCap:     snap.MarketCap,
		PERatio:       pe,
		DividendYield: snap.DividendYield,
		Beta:          snap.Beta,
		EPS:           snap.EPS,
		Revenue:       snap.Revenue,
		Description:   snap.Summary,
		Website:       snap.Website,
		Employees:     snap.Employees,
	}
	if err := s.store.UpsertProfile(ctx, *profile); err != nil {
		log.Printf("[stock] profile %s: upsert: %v", sym, err)
	}
	return profile, nil
}

// MarketStatus reports the current NYSE session state.
func (s *Service) MarketStatus() model.MarketStatus {
	return markethours.Status(time.Now())
}

// RecentPrices returns locally recorded observations, newest first.
func (s *Service) RecentPrices(ctx context.Context, symbol string, limit int) ([]sqlite.PricePoint, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.store.RecentPrices(ctx, sym, limit)
}
