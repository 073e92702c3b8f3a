// Package scheduler runs the background jobs: trending list refresh and
// price alert evaluation.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"stocktracker/internal/markethours"
	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
	"stocktracker/internal/notification"
	"stocktracker/internal/provider"
	"stocktracker/internal/stock"
	"stocktracker/internal/store/sqlite"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *stock.Service
	Data     provider.MarketData
	Store    *sqlite.Store
	Notifier notification.Notifier
	Mets     *metrics.Metrics
	Ctx      context.Context
}

// New creates a Scheduler bound to ctx.
func New(ctx context.Context, svc *stock.Service, data provider.MarketData, store *sqlite.Store, notifier notification.Notifier, mets *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Data:     data,
		Store:    store,
		Notifier: notifier,
		Mets:     mets,
		Ctx:      ctx,
	}
}

// RegisterAll wires the jobs: trending every 30 minutes, alert evaluation
// every minute.
func (s *Scheduler) RegisterAll(trendingCron, alertsCron string) error {
	if _, err := s.Cron.AddFunc(trendingCron, s.refreshTrending); err != nil {
		return fmt.Errorf("register trending task: %w", err)
	}
	if _, err := s.Cron.AddFunc(alertsCron, s.evaluateAlerts); err != nil {
		return fmt.Errorf("register alerts task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[scheduler] started")

	// Warm the trending cache instead of waiting for the first tick.
	go s.refreshTrending()
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	<-ctx.Done()
	log.Println("[scheduler] stopped")
}

func (s *Scheduler) refreshTrending() {
	ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Minute)
	defer cancel()

	list, err := s.Service.RefreshTrending(ctx)
	if err != nil {
		log.Printf("[scheduler] trending refresh: %v", err)
		return
	}
	log.Printf("[scheduler] trending refreshed: %d symbols", len(list))
}

// evaluateAlerts checks every active alert against the live quote and fires
// the ones whose condition holds. Alerts are one-shot: once triggered they
// deactivate. Evaluation is skipped outside trading hours since quotes do
// not move.
func (s *Scheduler) evaluateAlerts() {
	if !markethours.IsMarketOpen(time.Now()) {
		return
	}

	ctx, cancel := context.WithTimeout(s.Ctx, time.Minute)
	defer cancel()

	alerts, err := s.Store.ActiveAlerts(ctx)
	if err != nil {
		log.Printf("[scheduler] load alerts: %v", err)
		return
	}
	if len(alerts) == 0 {
		return
	}

	// One quote fetch per distinct symbol; the cache absorbs repeats anyway.
	quotes := make(map[string]*model.Quote)
	for _, a := range alerts {
		q, ok := quotes[a.Symbol]
		if !ok {
			var err error
			q, err = s.Data.Quote(ctx, a.Symbol)
			if err != nil {
				log.Printf("[scheduler] alert quote %s: %v", a.Symbol, err)
				quotes[a.Symbol] = nil
				continue
			}
			quotes[a.Symbol] = q
		}
		if q == nil || !q.Price.Valid {
			continue
		}

		price := q.Price.Float64
		fired := (a.Type == model.AlertPriceAbove && price > a.TargetValue) ||
			(a.Type == model.AlertPriceBelow && price < a.TargetValue)
		if !fired {
			continue
		}

		now := time.Now().UTC()
		if err := s.Store.MarkTriggered(ctx, a.ID, now); err != nil {
			log.Printf("[scheduler] mark alert %d: %v", a.ID, err)
			continue
		}
		s.Mets.AlertsTriggered.Inc()

		direction := "above"
		if a.Type == model.AlertPriceBelow {
			direction = "below"
		}
		err := s.Notifier.Send(ctx, notification.Alert{
			Level:   notification.AlertInfo,
			Title:   "Price alert triggered",
			Message: fmt.Sprintf("%s crossed %s %.2f (now %.2f)", a.Symbol, direction, a.TargetValue, price),
			Symbol:  a.Symbol,
			Price:   price,
		})
		if err != nil {
			log.Printf("[scheduler] notify alert %d: %v", a.ID, err)
		}
	}
}
