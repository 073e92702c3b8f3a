// Package metrics registers the Prometheus instrumentation and tracks
// liveness of the backing stores for /healthz.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the stock tracker.
type Metrics struct {
	// Upstream provider
	ProviderRequests *prometheus.CounterVec // labels: endpoint, status
	ProviderLatency  *prometheus.HistogramVec

	// Redis cache-aside
	CacheHits   *prometheus.CounterVec // labels: class
	CacheMisses *prometheus.CounterVec

	// Analysis engines
	TechnicalComputeDur   prometheus.Histogram
	FundamentalComputeDur prometheus.Histogram

	// WebSocket delivery
	WSClients  prometheus.Gauge
	WSMessages prometheus.Counter
	WSConnects prometheus.Counter

	// Persistence
	PricesRecorded  prometheus.Counter
	SQLiteCommitDur prometheus.Histogram

	// Background jobs
	TrendingRefreshDur prometheus.Histogram
	AlertsTriggered    prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocktracker_provider_requests_total",
			Help: "Upstream provider requests (by endpoint and outcome)",
		}, []string{"endpoint", "status"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stocktracker_provider_latency_seconds",
			Help:    "Upstream provider request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocktracker_cache_hits_total",
			Help: "Redis cache hits (by data class)",
		}, []string{"class"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocktracker_cache_misses_total",
			Help: "Redis cache misses (by data class)",
		}, []string{"class"}),

		TechnicalComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocktracker_technical_compute_duration_seconds",
			Help:    "Indicator report compute latency per request",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		FundamentalComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocktracker_fundamental_compute_duration_seconds",
			Help:    "Fundamental report compute latency per request",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocktracker_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		WSMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktracker_ws_messages_total",
			Help: "Price updates pushed over WebSocket",
		}),
		WSConnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktracker_ws_connects_total",
			Help: "WebSocket connections accepted",
		}),

		PricesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktracker_prices_recorded_total",
			Help: "Quote rows persisted to SQLite",
		}),
		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocktracker_sqlite_commit_duration_seconds",
			Help:    "SQLite batch commit latency",
			Buckets: prometheus.DefBuckets,
		}),

		TrendingRefreshDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocktracker_trending_refresh_duration_seconds",
			Help:    "Trending list refresh job latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocktracker_alerts_triggered_total",
			Help: "Price alerts that fired",
		}),
	}

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderLatency,
		m.CacheHits,
		m.CacheMisses,
		m.TechnicalComputeDur,
		m.FundamentalComputeDur,
		m.WSClients,
		m.WSMessages,
		m.WSConnects,
		m.PricesRecorded,
		m.SQLiteCommitDur,
		m.TrendingRefreshDur,
		m.AlertsTriggered,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected  bool    `json:"redis_connected"`
	SQLiteOK        bool    `json:"sqlite_ok"`
	RedisLatencyMs  float64 `json:"redis_latency_ms"`
	SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`

	LastProviderOK time.Time `json:"last_provider_ok"`
	LastCheckAt    time.Time `json:"last_check_at"`
	StartedAt      time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

// SetProviderOK records a successful upstream fetch.
func (h *HealthStatus) SetProviderOK(t time.Time) {
	h.mu.Lock()
	h.LastProviderOK = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint. SQLite is the only hard
// dependency; the service runs degraded without Redis.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SQLiteOK {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	} else if !h.RedisConnected {
		overallStatus = "degraded"
	}

	lastProvider := ""
	if !h.LastProviderOK.IsZero() {
		lastProvider = h.LastProviderOK.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastProviderOK  string  `json:"last_provider_ok"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastProviderOK:  lastProvider,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}
