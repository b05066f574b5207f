package market

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultCapacity is the default rolling window size per series
const DefaultCapacity = 100

// Store maintains a bounded, time-ordered window of recent candles per
// (instrument, timeframe) series. It absorbs both historical batch loads
// and live bar mutation from a realtime stream.
//
// Exceeding capacity always evicts the oldest candles, never the newest.
type Store struct {
	mu       sync.RWMutex
	capacity int
	windows  map[SeriesKey][]Candle
}

// NewStore creates a store with the given window capacity per series.
// A capacity <= 0 falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		windows:  make(map[SeriesKey][]Candle),
	}
}

// Capacity returns the fixed per-series window capacity.
func (s *Store) Capacity() int {
	return s.capacity
}

// Merge absorbs a batch of candles into the window for key.
//
// Realtime mode expects exactly one candle: the currently-forming or
// just-closed bar. A candle with the same timestamp as the last stored bar
// replaces it in place (the bar is still forming); a newer timestamp appends
// and evicts the oldest bar once the window is full. The append path assumes
// monotonic arrival and never re-sorts the window.
//
// Historical mode reconciles a batch (backfill or REST response): candles
// with a timestamp already present overwrite in place, new timestamps are
// inserted, then the whole window is sorted ascending and trimmed from the
// front to capacity.
//
// Any malformed candle rejects the whole batch and leaves the window untouched.
func (s *Store) Merge(key SeriesKey, candles []Candle, isRealtime bool) error {
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("rejecting batch for %s: %w", key, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if isRealtime {
		if len(candles) != 1 {
			return fmt.Errorf("rejecting batch for %s: realtime merge expects exactly 1 candle, got %d", key, len(candles))
		}
		s.mergeRealtime(key, candles[0])
		return nil
	}

	s.mergeHistorical(key, candles)
	return nil
}

func (s *Store) mergeRealtime(key SeriesKey, c Candle) {
	window := s.windows[key]

	if n := len(window); n > 0 && window[n-1].Timestamp == c.Timestamp {
		// Same bar, still forming: take the updated values
		window[n-1] = c
		return
	}

	window = append(window, c)
	if len(window) > s.capacity {
		window = window[len(window)-s.capacity:]
	}
	s.windows[key] = window
}

func (s *Store) mergeHistorical(key SeriesKey, candles []Candle) {
	window := s.windows[key]

	for _, c := range candles {
		replaced := false
		for i := range window {
			if window[i].Timestamp == c.Timestamp {
				window[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			window = append(window, c)
		}
	}

	sort.Slice(window, func(i, j int) bool {
		return window[i].Timestamp < window[j].Timestamp
	})
	if len(window) > s.capacity {
		window = window[len(window)-s.capacity:]
	}
	s.windows[key] = window
}

// Get returns a snapshot of the current window for key, oldest first.
// The snapshot is a copy; mutating it does not affect the store.
func (s *Store) Get(key SeriesKey) []Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := s.windows[key]
	out := make([]Candle, len(window))
	copy(out, window)
	return out
}

// Len returns the current window length for key.
func (s *Store) Len(key SeriesKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows[key])
}

// Keys returns all series keys with at least one candle.
func (s *Store) Keys() []SeriesKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]SeriesKey, 0, len(s.windows))
	for k := range s.windows {
		keys = append(keys, k)
	}
	return keys
}
