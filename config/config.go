// Package config loads runtime configuration from an optional JSON file with
// environment variable overrides. Environment always wins over the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"candlescan/internal/logging"
)

// EngineConfig controls the detection pipeline
type EngineConfig struct {
	Enabled         bool     `json:"enabled"`
	MinConfidence   int      `json:"min_confidence"`
	EnabledPatterns []string `json:"enabled_patterns"` // Empty list means all families
	WindowSize      int      `json:"window_size"`
	HistorySize     int      `json:"history_size"`
	ThrottleMs      int      `json:"throttle_ms"`
	ThrottleScope   string   `json:"throttle_scope"` // "global" or "series"
}

// FeedConfig controls the market data feed
type FeedConfig struct {
	WSBaseURL     string   `json:"ws_base_url"`
	RESTBaseURL   string   `json:"rest_base_url"`
	Symbols       []string `json:"symbols"`
	Timeframes    []string `json:"timeframes"`
	BackfillLimit int      `json:"backfill_limit"`
}

// TelegramConfig holds Telegram sink settings
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

// DiscordConfig holds Discord sink settings
type DiscordConfig struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
}

// RedisConfig holds Redis sink settings
type RedisConfig struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	Channel   string `json:"channel"`
	RecentKey string `json:"recent_key"`
}

// NotificationConfig groups the outbound sinks
type NotificationConfig struct {
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
	Redis    RedisConfig    `json:"redis"`
}

// ServerConfig controls the read-only HTTP API
type ServerConfig struct {
	Enabled        bool     `json:"enabled"`
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// Config is the full application configuration
type Config struct {
	Engine       EngineConfig       `json:"engine"`
	Feed         FeedConfig         `json:"feed"`
	Notification NotificationConfig `json:"notification"`
	Server       ServerConfig       `json:"server"`
	Logging      logging.Config     `json:"logging"`
}

// Default returns the configuration used when no file and no env are present.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Enabled:       true,
			MinConfidence: 0,
			WindowSize:    100,
			HistorySize:   50,
			ThrottleMs:    1000,
			ThrottleScope: "global",
		},
		Feed: FeedConfig{
			WSBaseURL:     "wss://stream.binance.com:9443",
			RESTBaseURL:   "https://api.binance.com",
			Symbols:       []string{"BTCUSDT"},
			Timeframes:    []string{"1m"},
			BackfillLimit: 100,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		Logging: logging.Config{
			Level:  "info",
			Output: "stdout",
		},
	}
}

// Load reads configuration from path (if the file exists) and applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Engine.Enabled = getEnvBool("ENGINE_ENABLED", c.Engine.Enabled)
	c.Engine.MinConfidence = getEnvInt("ENGINE_MIN_CONFIDENCE", c.Engine.MinConfidence)
	c.Engine.WindowSize = getEnvInt("ENGINE_WINDOW_SIZE", c.Engine.WindowSize)
	c.Engine.HistorySize = getEnvInt("ENGINE_HISTORY_SIZE", c.Engine.HistorySize)
	c.Engine.ThrottleMs = getEnvInt("ENGINE_THROTTLE_MS", c.Engine.ThrottleMs)
	c.Engine.ThrottleScope = getEnvOrDefault("ENGINE_THROTTLE_SCOPE", c.Engine.ThrottleScope)
	if v := os.Getenv("ENGINE_ENABLED_PATTERNS"); v != "" {
		c.Engine.EnabledPatterns = splitList(v)
	}

	c.Feed.WSBaseURL = getEnvOrDefault("FEED_WS_BASE_URL", c.Feed.WSBaseURL)
	c.Feed.RESTBaseURL = getEnvOrDefault("FEED_REST_BASE_URL", c.Feed.RESTBaseURL)
	c.Feed.BackfillLimit = getEnvInt("FEED_BACKFILL_LIMIT", c.Feed.BackfillLimit)
	if v := os.Getenv("FEED_SYMBOLS"); v != "" {
		c.Feed.Symbols = splitList(v)
	}
	if v := os.Getenv("FEED_TIMEFRAMES"); v != "" {
		c.Feed.Timeframes = splitList(v)
	}

	c.Notification.Telegram.Enabled = getEnvBool("TELEGRAM_ENABLED", c.Notification.Telegram.Enabled)
	c.Notification.Telegram.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", c.Notification.Telegram.BotToken)
	c.Notification.Telegram.ChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", c.Notification.Telegram.ChatID)

	c.Notification.Discord.Enabled = getEnvBool("DISCORD_ENABLED", c.Notification.Discord.Enabled)
	c.Notification.Discord.WebhookURL = getEnvOrDefault("DISCORD_WEBHOOK_URL", c.Notification.Discord.WebhookURL)

	c.Notification.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Notification.Redis.Enabled)
	c.Notification.Redis.Addr = getEnvOrDefault("REDIS_ADDR", c.Notification.Redis.Addr)
	c.Notification.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Notification.Redis.Password)
	c.Notification.Redis.DB = getEnvInt("REDIS_DB", c.Notification.Redis.DB)
	c.Notification.Redis.Channel = getEnvOrDefault("REDIS_CHANNEL", c.Notification.Redis.Channel)

	c.Server.Enabled = getEnvBool("SERVER_ENABLED", c.Server.Enabled)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	if v := os.Getenv("SERVER_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
	c.Logging.Output = getEnvOrDefault("LOG_OUTPUT", c.Logging.Output)
	c.Logging.Pretty = getEnvBool("LOG_PRETTY", c.Logging.Pretty)
}

func (c *Config) validate() error {
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 100 {
		return fmt.Errorf("engine.min_confidence must be 0-100, got %d", c.Engine.MinConfidence)
	}
	if c.Engine.WindowSize < 1 {
		return fmt.Errorf("engine.window_size must be positive, got %d", c.Engine.WindowSize)
	}
	if c.Engine.ThrottleMs < 0 {
		return fmt.Errorf("engine.throttle_ms must be non-negative, got %d", c.Engine.ThrottleMs)
	}
	switch c.Engine.ThrottleScope {
	case "", "global", "series":
	default:
		return fmt.Errorf("engine.throttle_scope must be \"global\" or \"series\", got %q", c.Engine.ThrottleScope)
	}
	if c.Server.Enabled && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
