// Package config loads application configuration from a YAML file with
// environment variable overrides and built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Provider struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"provider"`
	Schedule struct {
		TrendingCron string `yaml:"trending_cron"`
		AlertsCron   string `yaml:"alerts_cron"`
	} `yaml:"schedule"`
	Notify struct {
		WebhookURL       string `yaml:"webhook_url"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		TelegramChatID   string `yaml:"telegram_chat_id"`
	} `yaml:"notify"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; defaults cover everything.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("TRENDING_CRON"); v != "" {
		cfg.Schedule.TrendingCron = v
	}
	if v := os.Getenv("ALERTS_CRON"); v != "" {
		cfg.Schedule.AlertsCron = v
	}
	if v := os.Getenv("NOTIFY_WEBHOOK_URL"); v != "" {
		cfg.Notify.WebhookURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notify.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notify.TelegramChatID = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocks.db"
	}
	if cfg.Schedule.TrendingCron == "" {
		// Every 30 minutes
		cfg.Schedule.TrendingCron = "0 */30 * * * *"
	}
	if cfg.Schedule.AlertsCron == "" {
		// Every minute
		cfg.Schedule.AlertsCron = "0 * * * * *"
	}

	return cfg, nil
}
