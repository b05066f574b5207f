package engine

import (
	"fmt"
	"testing"

	"candlescan/internal/patterns"
)

func testEvent(name string, ts int64) Event {
	return Event{
		ID: fmt.Sprintf("%s-%d", name, ts),
		Match: patterns.Match{
			Name:       name,
			Direction:  patterns.Bullish,
			Confidence: 80,
			Timestamp:  ts,
		},
	}
}

func TestMatchLogSeen(t *testing.T) {
	log := NewMatchLog(10)

	if log.Seen("Hammer", 1000) {
		t.Error("empty log must not report anything seen")
	}

	log.Add(testEvent("Hammer", 1000))
	if !log.Seen("Hammer", 1000) {
		t.Error("added event must be seen")
	}
	if log.Seen("Hammer", 2000) {
		t.Error("same name at a different timestamp is a different event")
	}
	if log.Seen("Doji", 1000) {
		t.Error("different name at the same timestamp is a different event")
	}
}

func TestMatchLogEvictsOldest(t *testing.T) {
	log := NewMatchLog(3)

	for i := int64(1); i <= 4; i++ {
		log.Add(testEvent("Hammer", i*1000))
	}

	if got := log.Len(); got != 3 {
		t.Fatalf("expected capacity 3 enforced, got %d", got)
	}
	if log.Seen("Hammer", 1000) {
		t.Error("oldest entry must be evicted from the dedup set")
	}
	if !log.Seen("Hammer", 4000) {
		t.Error("newest entry must be retained")
	}
}

func TestMatchLogRecent(t *testing.T) {
	log := NewMatchLog(10)
	for i := int64(1); i <= 5; i++ {
		log.Add(testEvent("Doji", i*1000))
	}

	recent := log.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
	if recent[0].Timestamp != 5000 || recent[1].Timestamp != 4000 {
		t.Errorf("expected newest first, got %d then %d", recent[0].Timestamp, recent[1].Timestamp)
	}

	if got := log.Recent(0); len(got) != 5 {
		t.Errorf("limit 0 must return everything, got %d", len(got))
	}
}

func TestMatchLogDefaultCapacity(t *testing.T) {
	log := NewMatchLog(0)
	for i := int64(1); i <= 60; i++ {
		log.Add(testEvent("Doji", i))
	}
	if got := log.Len(); got != DefaultHistorySize {
		t.Errorf("expected default capacity %d, got %d", DefaultHistorySize, got)
	}
}
