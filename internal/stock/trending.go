package stock

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stocktracker/internal/model"
)

const (
	trendingFanout = 4
	trendingLimit  = 10
)

// Trending serves the last refreshed list; the first call before any
// refresh computes it synchronously.
func (s *Service) Trending(ctx context.Context) ([]model.TrendingStock, error) {
	s.mu.RLock()
	cached := s.trending
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return s.RefreshTrending(ctx)
}

// RefreshTrending re-ranks the trending universe by absolute percentage
// change. Symbols the upstream fails on are skipped; the job only fails
// when the context dies.
func (s *Service) RefreshTrending(ctx context.Context) ([]model.TrendingStock, error) {
	start := time.Now()

	var mu sync.Mutex
	list := make([]model.TrendingStock, 0, len(trendingSymbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trendingFanout)
	for _, sym := range trendingSymbols {
		sym := sym
		g.Go(func() error {
			q, err := s.data.Quote(gctx, sym)
			if err != nil {
				log.Printf("[stock] trending quote %s: %v", sym, err)
				return nil
			}
			t := model.TrendingStock{
				Symbol:        sym,
				Name:          catalogName(sym),
				Price:         q.Price,
				ChangePercent: q.ChangePercent,
				Volume:        q.Volume,
			}
			// Market cap comes from the (long-TTL cached) fundamentals.
			if b, err := s.data.Fundamentals(gctx, sym); err == nil {
				t.MarketCap = b.Current.MarketCap
			}
			mu.Lock()
			list = append(list, t)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool {
		return math.Abs(list[i].ChangePercent) > math.Abs(list[j].ChangePercent)
	})
	if len(list) > trendingLimit {
		list = list[:trendingLimit]
	}

	s.mu.Lock()
	s.trending = list
	s.mu.Unlock()

	s.mets.TrendingRefreshDur.Observe(time.Since(start).Seconds())
	return list, nil
}
