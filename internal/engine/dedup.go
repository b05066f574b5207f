package engine

import "sync"

// DefaultHistorySize is the default capacity of the emitted-pattern log
const DefaultHistorySize = 50

type dedupKey struct {
	name      string
	timestamp int64
}

// MatchLog is a bounded FIFO history of emitted pattern events. The engine
// consults it so repeated detection on an unchanged window does not re-fire;
// it is not a source of truth for re-display. Entries are append-only except
// for capacity eviction.
type MatchLog struct {
	mu       sync.RWMutex
	capacity int
	events   []Event
	seen     map[dedupKey]struct{}
}

// NewMatchLog creates a log with the given capacity.
// A capacity <= 0 falls back to DefaultHistorySize.
func NewMatchLog(capacity int) *MatchLog {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &MatchLog{
		capacity: capacity,
		seen:     make(map[dedupKey]struct{}, capacity),
	}
}

// Seen reports whether a match with this (name, timestamp) identity has
// already been emitted. Confidence is deliberately not part of the key: a
// re-detection with a different score is still the same event.
func (l *MatchLog) Seen(name string, timestamp int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[dedupKey{name, timestamp}]
	return ok
}

// Add records an emitted event, evicting the oldest entry once full.
func (l *MatchLog) Add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) >= l.capacity {
		oldest := l.events[0]
		delete(l.seen, dedupKey{oldest.Name, oldest.Timestamp})
		l.events = l.events[1:]
	}
	l.events = append(l.events, ev)
	l.seen[dedupKey{ev.Name, ev.Timestamp}] = struct{}{}
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (l *MatchLog) Recent(limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := len(l.events) - 1; i >= len(l.events)-n; i-- {
		out = append(out, l.events[i])
	}
	return out
}

// Len returns the number of events currently held.
func (l *MatchLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
