package events

import (
	"errors"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBusDeliversToTypeSubscribers(t *testing.T) {
	bus := NewBus()
	got := make(chan Event, 1)
	bus.Subscribe(TypePatternDetected, func(ev Event) { got <- ev })

	bus.Publish(Event{Type: TypePatternDetected, Data: map[string]interface{}{"name": "Hammer"}})

	ev := waitFor(t, got)
	if ev.Data["name"] != "Hammer" {
		t.Errorf("unexpected event data: %v", ev.Data)
	}
	if ev.Timestamp.IsZero() {
		t.Error("expected publish to stamp the event")
	}
}

func TestBusDoesNotCrossTypes(t *testing.T) {
	bus := NewBus()
	got := make(chan Event, 1)
	bus.Subscribe(TypeFeedConnected, func(ev Event) { got <- ev })

	bus.Publish(Event{Type: TypePatternDetected})

	select {
	case <-got:
		t.Error("subscriber received an event of another type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus()
	got := make(chan Event, 2)
	bus.SubscribeAll(func(ev Event) { got <- ev })

	bus.Publish(Event{Type: TypePatternDetected})
	bus.PublishError("feed", "stream lost", errors.New("broken pipe"))

	seen := map[Type]bool{}
	seen[waitFor(t, got).Type] = true
	seen[waitFor(t, got).Type] = true
	if !seen[TypePatternDetected] || !seen[TypeError] {
		t.Errorf("expected both event types, got %v", seen)
	}
}

func TestPublishErrorData(t *testing.T) {
	bus := NewBus()
	got := make(chan Event, 1)
	bus.Subscribe(TypeError, func(ev Event) { got <- ev })

	bus.PublishError("engine", "merge failed", errors.New("bad candle"))

	ev := waitFor(t, got)
	if ev.Data["source"] != "engine" || ev.Data["error"] != "bad candle" {
		t.Errorf("unexpected error payload: %v", ev.Data)
	}
}
