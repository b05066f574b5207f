package events

import (
	"sync"
	"time"
)

// Type represents the kinds of events flowing through the engine
type Type string

const (
	TypePatternDetected  Type = "PATTERN_DETECTED"
	TypeCandleUpdate     Type = "CANDLE_UPDATE"
	TypeFeedConnected    Type = "FEED_CONNECTED"
	TypeFeedDisconnected Type = "FEED_DISCONNECTED"
	TypeError            Type = "ERROR"
)

// Event is one in-process event
type Event struct {
	Type      Type                   `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber is a function that handles events
type Subscriber func(Event)

// Bus manages event publishing and subscriptions between the detection
// pipeline and its consumers (notification sinks, API surface).
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Subscriber
	allSubs     []Subscriber
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[Type][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific event type
func (b *Bus) Subscribe(t Type, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], sub)
}

// SubscribeAll registers a subscriber for every event type
func (b *Bus) SubscribeAll(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, sub)
}

// Publish delivers an event to all matching subscribers. Delivery runs in
// goroutines so a slow consumer never blocks the detection pipeline.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, sub := range b.subscribers[event.Type] {
		go sub(event)
	}
	for _, sub := range b.allSubs {
		go sub(event)
	}
}

// PublishError publishes an error event
func (b *Bus) PublishError(source, message string, err error) {
	data := map[string]interface{}{
		"source":  source,
		"message": message,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	b.Publish(Event{Type: TypeError, Data: data})
}

// PublishFeedStatus publishes a feed connect/disconnect event
func (b *Bus) PublishFeedStatus(t Type, url string, streams int) {
	b.Publish(Event{
		Type: t,
		Data: map[string]interface{}{
			"url":     url,
			"streams": streams,
		},
	})
}
