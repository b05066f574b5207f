package feed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"candlescan/internal/market"
)

// SubscriptionStats tracks feed subscription statistics
type SubscriptionStats struct {
	ActiveStreams   int       `json:"active_streams"`
	UpdatesReceived int64     `json:"updates_received"`
	ParseFailures   int64     `json:"parse_failures"`
	LastUpdateTime  time.Time `json:"last_update_time"`
}

// SubscriptionManager tracks which (instrument, timeframe) streams the feed
// follows and builds the combined stream list for (re)connection.
type SubscriptionManager struct {
	mu sync.RWMutex

	subscriptions map[market.SeriesKey]bool

	updatesReceived int64
	parseFailures   int64
	lastUpdateTime  time.Time
}

// NewSubscriptionManager creates an empty subscription manager
func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subscriptions: make(map[market.SeriesKey]bool),
	}
}

// Add subscribes to a (instrument, timeframe) stream
func (m *SubscriptionManager) Add(instrument, timeframe string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := market.SeriesKey{Instrument: strings.ToUpper(instrument), Timeframe: timeframe}
	m.subscriptions[key] = true
}

// Remove unsubscribes from a (instrument, timeframe) stream
func (m *SubscriptionManager) Remove(instrument, timeframe string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := market.SeriesKey{Instrument: strings.ToUpper(instrument), Timeframe: timeframe}
	delete(m.subscriptions, key)
}

// List returns all subscribed series keys
func (m *SubscriptionManager) List() []market.SeriesKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]market.SeriesKey, 0, len(m.subscriptions))
	for k := range m.subscriptions {
		keys = append(keys, k)
	}
	return keys
}

// BuildStreamList builds combined-stream names for the current
// subscriptions, e.g. "btcusdt@kline_1m".
func (m *SubscriptionManager) BuildStreamList() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	streams := make([]string, 0, len(m.subscriptions))
	for k := range m.subscriptions {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", strings.ToLower(k.Instrument), k.Timeframe))
	}
	return streams
}

// RecordUpdate records a successfully parsed stream update
func (m *SubscriptionManager) RecordUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatesReceived++
	m.lastUpdateTime = time.Now()
}

// RecordParseFailure records a payload that could not be parsed or validated
func (m *SubscriptionManager) RecordParseFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parseFailures++
}

// Stats returns a snapshot of subscription statistics
func (m *SubscriptionManager) Stats() SubscriptionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return SubscriptionStats{
		ActiveStreams:   len(m.subscriptions),
		UpdatesReceived: m.updatesReceived,
		ParseFailures:   m.parseFailures,
		LastUpdateTime:  m.lastUpdateTime,
	}
}
