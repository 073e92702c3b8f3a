package provider

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
)

// Cache TTLs per data class. Quotes churn constantly; fundamentals change
// once per reporting period.
const (
	quoteTTL        = 30 * time.Second
	barsTTL         = 10 * time.Minute
	fundamentalsTTL = 6 * time.Hour
	dividendsTTL    = 24 * time.Hour
)

// CachedProvider is a cache-aside decorator over an upstream MarketData.
// A Redis failure is never fatal: reads fall through to the upstream and
// writes are dropped with a log line, so the service degrades to uncached.
type CachedProvider struct {
	inner MarketData
	rdb   *goredis.Client
	mets  *metrics.Metrics
}

func NewCachedProvider(inner MarketData, rdb *goredis.Client, mets *metrics.Metrics) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb, mets: mets}
}

// lookup returns true when the key was served from cache and decoded into out.
func (c *CachedProvider) lookup(ctx context.Context, class, key string, out any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("[cache] GET %s: %v", key, err)
		}
		c.mets.CacheMisses.WithLabelValues(class).Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[cache] decode %s: %v", key, err)
		c.mets.CacheMisses.WithLabelValues(class).Inc()
		return false
	}
	c.mets.CacheHits.WithLabelValues(class).Inc()
	return true
}

func (c *CachedProvider) store(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[cache] encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[cache] SET %s: %v", key, err)
	}
}

// fetch times the upstream call and counts its outcome.
func (c *CachedProvider) fetch(endpoint string, call func() error) error {
	start := time.Now()
	err := call()
	c.mets.ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	status := "ok"
	switch {
	case errors.Is(err, ErrNoData):
		status = "no_data"
	case err != nil:
		status = "error"
	}
	c.mets.ProviderRequests.WithLabelValues(endpoint, status).Inc()
	return err
}

func (c *CachedProvider) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	key := "quote:" + symbol
	var cached model.Quote
	if c.lookup(ctx, "quote", key, &cached) {
		return &cached, nil
	}

	var q *model.Quote
	err := c.fetch("quote", func() error {
		var err error
		q, err = c.inner.Quote(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, q, quoteTTL)
	return q, nil
}

func (c *CachedProvider) DailyBars(ctx context.Context, symbol, rng string) (*model.BarSeries, error) {
	key := "bars:" + symbol + ":" + rng
	var cached model.BarSeries
	if c.lookup(ctx, "bars", key, &cached) {
		return &cached, nil
	}

	var s *model.BarSeries
	err := c.fetch("bars", func() error {
		var err error
		s, err = c.inner.DailyBars(ctx, symbol, rng)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, s, barsTTL)
	return s, nil
}

func (c *CachedProvider) Fundamentals(ctx context.Context, symbol string) (*model.FundamentalsBundle, error) {
	key := "fund:" + symbol
	var cached model.FundamentalsBundle
	if c.lookup(ctx, "fundamentals", key, &cached) {
		return &cached, nil
	}

	var b *model.FundamentalsBundle
	err := c.fetch("fundamentals", func() error {
		var err error
		b, err = c.inner.Fundamentals(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, b, fundamentalsTTL)
	return b, nil
}

func (c *CachedProvider) Dividends(ctx context.Context, symbol string) ([]model.DividendPayment, error) {
	key := "div:" + symbol
	var cached []model.DividendPayment
	if c.lookup(ctx, "dividends", key, &cached) {
		return cached, nil
	}

	var payments []model.DividendPayment
	err := c.fetch("dividends", func() error {
		var err error
		payments, err = c.inner.Dividends(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, payments, dividendsTTL)
	return payments, nil
}
