package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"stocktracker/config"
	"stocktracker/internal/gateway"
	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
	"stocktracker/internal/notification"
	"stocktracker/internal/provider"
	"stocktracker/internal/scheduler"
	"stocktracker/internal/stock"
	"stocktracker/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("[server] starting...")

	if err := godotenv.Load(); err != nil {
		log.Printf("[server] .env not loaded: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[server] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mets := metrics.NewMetrics()
	health := metrics.NewHealthStatus()

	// SQLite is required; the process is useless without its own storage.
	store, err := sqlite.New(sqlite.Config{Path: cfg.Database.SQLitePath})
	if err != nil {
		log.Fatalf("[server] sqlite: %v", err)
	}
	defer store.Close()
	health.CheckSQLite(ctx, store.DB())

	// Redis is optional: without it the provider runs uncached.
	var data provider.MarketData
	yahoo := provider.NewYahooClient()
	if cfg.Provider.BaseURL != "" {
		yahoo = provider.NewYahooClientWithBase(cfg.Provider.BaseURL, &http.Client{Timeout: 15 * time.Second})
	}
	data = yahoo

	var rdb *goredis.Client
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = client.Ping(pingCtx).Err()
	pingCancel()
	if err != nil {
		log.Printf("[server] WARNING: redis unavailable at %s: %v (running uncached)", cfg.Redis.Addr, err)
		client.Close()
	} else {
		log.Printf("[server] redis connected at %s", cfg.Redis.Addr)
		rdb = client
		defer rdb.Close()
		data = provider.NewCachedProvider(yahoo, rdb, mets)
	}

	health.StartLivenessChecker(ctx, rdb, store.DB(), 15*time.Second)

	// Price recorder drains quote observations into SQLite.
	recordCh := make(chan model.Quote, 256)
	go store.RunPriceRecorder(ctx, recordCh, mets)

	svc := stock.NewService(data, store, mets, health, recordCh)

	notifier := buildNotifier(cfg)

	sched := scheduler.New(ctx, svc, data, store, notifier, mets)
	if err := sched.RegisterAll(cfg.Schedule.TrendingCron, cfg.Schedule.AlertsCron); err != nil {
		log.Fatalf("[server] scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	hub := gateway.NewHub(ctx, svc.CurrentPrice, mets)
	server := gateway.NewServer(svc, store, hub, health)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[server] listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] http: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[server] shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	log.Println("[server] stopped")
}

func buildNotifier(cfg *config.Config) notification.Notifier {
	chain := notification.Multi{notification.NewLogNotifier()}
	if cfg.Notify.WebhookURL != "" {
		chain = append(chain, notification.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	if cfg.Notify.TelegramBotToken != "" && cfg.Notify.TelegramChatID != "" {
		chain = append(chain, notification.NewTelegramNotifier(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID))
	}
	return chain
}
