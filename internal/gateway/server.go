// Package gateway is the HTTP and WebSocket delivery layer.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
	"stocktracker/internal/provider"
	"stocktracker/internal/stock"
	"stocktracker/internal/store/sqlite"
	"stocktracker/internal/technical"
)

// StockService is the slice of the service layer the gateway consumes.
type StockService interface {
	CurrentPrice(ctx context.Context, symbol string) (*model.Quote, error)
	History(ctx context.Context, symbol, rng string) (*model.BarSeries, error)
	TechnicalReport(ctx context.Context, symbol, rng string) (*model.IndicatorReport, error)
	FundamentalReport(ctx context.Context, symbol string) (*model.FundamentalReport, error)
	Profile(ctx context.Context, symbol string) (*model.CompanyProfile, error)
	Trending(ctx context.Context) ([]model.TrendingStock, error)
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
	MarketStatus() model.MarketStatus
	RecentPrices(ctx context.Context, symbol string, limit int) ([]sqlite.PricePoint, error)
}

// Server wires the REST handlers and the WebSocket hub.
type Server struct {
	svc    StockService
	store  *sqlite.Store
	hub    *Hub
	health *metrics.HealthStatus
}

func NewServer(svc StockService, store *sqlite.Store, hub *Hub, health *metrics.HealthStatus) *Server {
	return &Server{svc: svc, store: store, hub: hub, health: health}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stocks/trending", s.handleTrending)
		r.Get("/stocks/search", s.handleSearch)

		r.Route("/stocks/{symbol}", func(r chi.Router) {
			r.Get("/price", s.handlePrice)
			r.Get("/history", s.handleHistory)
			r.Get("/recorded", s.handleRecorded)
			r.Get("/profile", s.handleProfile)
			r.Get("/technical", s.handleTechnical)
			r.Get("/fundamental", s.handleFundamental)
		})

		r.Get("/market/status", s.handleMarketStatus)

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleWatchlistGet)
			r.Post("/{symbol}", s.handleWatchlistAdd)
			r.Delete("/{symbol}", s.handleWatchlistRemove)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.handleAlertsGet)
			r.Post("/", s.handleAlertCreate)
			r.Delete("/{id}", s.handleAlertDelete)
		})
	})

	r.Get("/ws/{symbol}", s.handleWS)
	r.Get("/healthz", s.health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeErr maps service errors to status codes. 4xx responses carry the
// error text; 5xx responses stay generic and the detail goes to the log.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch {
	case errors.Is(err, stock.ErrInvalidSymbol), errors.Is(err, stock.ErrInvalidRange):
		code = http.StatusBadRequest
	case errors.Is(err, provider.ErrNoData), errors.Is(err, technical.ErrInsufficientData):
		code = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	default:
		code = http.StatusInternalServerError
	}

	msg := err.Error()
	if code >= 500 {
		log.Printf("[gateway] %s %s: %v", r.Method, r.URL.Path, err)
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}
