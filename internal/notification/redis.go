package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// RedisConfig holds Redis sink configuration
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	Channel    string // Pub/sub channel for live consumers
	RecentKey  string // List key mirroring the recent-event log
	RecentSize int64  // Max entries kept in the recent list
	Enabled    bool
}

// RedisNotifier publishes pattern events to a Redis channel and mirrors them
// into a capped list so late consumers can catch up. A dead Redis degrades
// to log noise; detection keeps running.
type RedisNotifier struct {
	client     *redis.Client
	channel    string
	recentKey  string
	recentSize int64
	enabled    bool
}

// NewRedisNotifier creates a Redis sink. The connection is verified eagerly
// so a misconfigured address surfaces at startup rather than on first event.
func NewRedisNotifier(config RedisConfig) (*RedisNotifier, error) {
	if !config.Enabled || config.Addr == "" {
		return &RedisNotifier{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	channel := config.Channel
	if channel == "" {
		channel = "candlescan:patterns"
	}
	recentKey := config.RecentKey
	if recentKey == "" {
		recentKey = "candlescan:patterns:recent"
	}
	recentSize := config.RecentSize
	if recentSize <= 0 {
		recentSize = 50
	}

	return &RedisNotifier{
		client:     client,
		channel:    channel,
		recentKey:  recentKey,
		recentSize: recentSize,
		enabled:    true,
	}, nil
}

func (r *RedisNotifier) Name() string {
	return "redis"
}

func (r *RedisNotifier) IsEnabled() bool {
	return r.enabled
}

func (r *RedisNotifier) Send(notification *Notification) error {
	if !r.enabled {
		return nil
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal redis payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	pipe := r.client.Pipeline()
	pipe.Publish(ctx, r.channel, data)
	pipe.LPush(ctx, r.recentKey, data)
	pipe.LTrim(ctx, r.recentKey, 0, r.recentSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisNotifier) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
