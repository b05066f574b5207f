package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"candlescan/config"
	"candlescan/internal/api"
	"candlescan/internal/engine"
	"candlescan/internal/events"
	"candlescan/internal/feed"
	"candlescan/internal/logging"
	"candlescan/internal/market"
	"candlescan/internal/notification"
	"candlescan/internal/patterns"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	logger.Info().Str("config", *configPath).Msg("starting candlescan")

	enabledFamilies, err := parseFamilies(cfg.Engine.EnabledPatterns)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid pattern configuration")
	}

	bus := events.NewBus()
	store := market.NewStore(cfg.Engine.WindowSize)
	eng := engine.New(store, engine.Config{
		Enabled:          cfg.Engine.Enabled,
		MinConfidence:    cfg.Engine.MinConfidence,
		EnabledPatterns:  enabledFamilies,
		ThrottleInterval: time.Duration(cfg.Engine.ThrottleMs) * time.Millisecond,
		ThrottleScope:    engine.ThrottleScope(cfg.Engine.ThrottleScope),
		HistorySize:      cfg.Engine.HistorySize,
	}, bus, logger)

	manager := buildNotificationManager(cfg.Notification, logger)
	bus.Subscribe(events.TypePatternDetected, func(ev events.Event) {
		e, ok := ev.Data["event"].(engine.Event)
		if !ok {
			return
		}
		n := &notification.Notification{
			EventID:    e.ID,
			Pattern:    e.Name,
			Direction:  string(e.Direction),
			Confidence: e.Confidence,
			Message:    e.Description,
			Instrument: e.Instrument,
			Timeframe:  e.Timeframe,
			Timestamp:  e.Timestamp,
		}
		if err := manager.Send(n); err != nil {
			logger.Warn().Err(err).Str("pattern", e.Name).Msg("notification delivery failed")
		}
	})

	subs := feed.NewSubscriptionManager()
	for _, symbol := range cfg.Feed.Symbols {
		for _, tf := range cfg.Feed.Timeframes {
			subs.Add(symbol, tf)
		}
	}

	handler := func(u feed.Update) {
		if _, err := eng.ProcessUpdate(u); err != nil {
			logger.Warn().Err(err).
				Str("instrument", u.Instrument).
				Str("timeframe", u.Timeframe).
				Msg("update rejected")
		}
	}

	backfiller := feed.NewBackfiller(cfg.Feed.RESTBaseURL, logger)
	backfiller.Backfill(subs, cfg.Feed.BackfillLimit, handler)

	stream := feed.NewStream(cfg.Feed.WSBaseURL, subs, handler, bus, logger)
	stream.Start()

	var server *api.Server
	if cfg.Server.Enabled {
		server = api.NewServer(api.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, eng, subs, stream, logger)
		server.Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	stream.Stop()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("api shutdown failed")
		}
	}
	logger.Info().Msg("stopped")
}

func parseFamilies(names []string) ([]patterns.Family, error) {
	if len(names) == 0 {
		return nil, nil // All families
	}
	out := make([]patterns.Family, 0, len(names))
	for _, name := range names {
		f, err := patterns.ParseFamily(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func buildNotificationManager(cfg config.NotificationConfig, logger zerolog.Logger) *notification.Manager {
	manager := notification.NewManager()

	manager.AddNotifier(notification.NewTelegramNotifier(notification.TelegramConfig{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Enabled:  cfg.Telegram.Enabled,
	}))
	manager.AddNotifier(notification.NewDiscordNotifier(notification.DiscordConfig{
		WebhookURL: cfg.Discord.WebhookURL,
		Enabled:    cfg.Discord.Enabled,
	}))

	redisSink, err := notification.NewRedisNotifier(notification.RedisConfig{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		Channel:   cfg.Redis.Channel,
		RecentKey: cfg.Redis.RecentKey,
		Enabled:   cfg.Redis.Enabled,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("redis sink unavailable, continuing without it")
	} else {
		manager.AddNotifier(redisSink)
	}

	return manager
}
