// Package engine ties the candle store, the pattern detector, and the
// deduplication log into one update-driven pipeline.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"candlescan/internal/events"
	"candlescan/internal/feed"
	"candlescan/internal/market"
	"candlescan/internal/patterns"
)

// minDetectionCandles is the minimum window size before detection runs
const minDetectionCandles = 3

// DefaultThrottleInterval bounds how often the detector runs under a
// high-frequency stream
const DefaultThrottleInterval = time.Second

// ThrottleScope selects how the evaluation throttle is keyed
type ThrottleScope string

const (
	// ThrottleGlobal uses one throttle timestamp for the whole engine.
	// Under multi-instrument streaming this means at most one series gets
	// evaluated per interval in the worst case.
	ThrottleGlobal ThrottleScope = "global"
	// ThrottleSeries keeps an independent throttle timestamp per series key
	ThrottleSeries ThrottleScope = "series"
)

// Event is one emitted, deduplicated pattern match.
type Event struct {
	ID string `json:"event_id"`
	patterns.Match
}

// Config controls the detection pipeline.
type Config struct {
	// Enabled is the master switch: when false, updates are merged into
	// the store but no detection pass ever runs.
	Enabled bool
	// MinConfidence is the confidence floor for reported matches (0-100)
	MinConfidence int
	// EnabledPatterns limits the battery; nil means all families
	EnabledPatterns []patterns.Family
	// ThrottleInterval is the minimum gap between detection passes
	// (default 1s)
	ThrottleInterval time.Duration
	// ThrottleScope keys the throttle globally or per series
	// (default global)
	ThrottleScope ThrottleScope
	// HistorySize caps the emitted-pattern log (default 50)
	HistorySize int
}

// Stats holds engine counters for the stats endpoint
type Stats struct {
	UpdatesProcessed int64 `json:"updates_processed"`
	PassesRun        int64 `json:"passes_run"`
	PassesThrottled  int64 `json:"passes_throttled"`
	EventsEmitted    int64 `json:"events_emitted"`
}

// Engine owns one candle store, one detector configuration, one emitted-
// pattern log, and the evaluation throttle. Construct one per process (or
// per test); there is no package-level state.
//
// ProcessUpdate must not be called concurrently from multiple goroutines
// without external synchronization: the feed delivers updates one at a time.
type Engine struct {
	store  *market.Store
	cfg    Config
	log    *MatchLog
	bus    *events.Bus
	logger zerolog.Logger
	clock  func() time.Time

	mu            sync.Mutex
	lastEval      time.Time
	lastEvalByKey map[market.SeriesKey]time.Time
	stats         Stats
}

// New creates an engine around an existing store. bus may be nil when no
// consumer is wired (tests).
func New(store *market.Store, cfg Config, bus *events.Bus, logger zerolog.Logger) *Engine {
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = DefaultThrottleInterval
	}
	if cfg.ThrottleScope == "" {
		cfg.ThrottleScope = ThrottleGlobal
	}
	return &Engine{
		store:         store,
		cfg:           cfg,
		log:           NewMatchLog(cfg.HistorySize),
		bus:           bus,
		logger:        logger.With().Str("component", "engine").Logger(),
		clock:         time.Now,
		lastEvalByKey: make(map[market.SeriesKey]time.Time),
	}
}

// SetClock replaces the wall clock used by the throttle. Intended for tests.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
}

// Store returns the engine's candle store.
func (e *Engine) Store() *market.Store {
	return e.store
}

// Recent returns up to limit recently emitted events, newest first.
func (e *Engine) Recent(limit int) []Event {
	return e.log.Recent(limit)
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// ProcessUpdate runs one feed update through the pipeline: merge, throttle
// check, detection, dedup, dispatch. It returns the newly emitted events.
// The update's candles are always merged; the throttle only skips the
// detection pass. Sink delivery is fire-and-forget: a failing consumer
// never affects the pipeline.
func (e *Engine) ProcessUpdate(u feed.Update) ([]Event, error) {
	key := market.SeriesKey{Instrument: u.Instrument, Timeframe: u.Timeframe}

	if err := e.store.Merge(key, u.Candles, u.IsRealtime); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.stats.UpdatesProcessed++
	e.mu.Unlock()

	if !e.cfg.Enabled {
		return nil, nil
	}
	if !e.takeEvaluationSlot(key) {
		return nil, nil
	}

	window := e.store.Get(key)
	if len(window) < minDetectionCandles {
		return nil, nil
	}

	matches := patterns.Detect(window, patterns.Config{
		MinConfidence: e.cfg.MinConfidence,
		Enabled:       e.cfg.EnabledPatterns,
	})

	var emitted []Event
	for _, m := range matches {
		if e.log.Seen(m.Name, m.Timestamp) {
			continue
		}
		ev := Event{ID: uuid.New().String(), Match: m}
		e.log.Add(ev)
		emitted = append(emitted, ev)
		e.dispatch(ev)
	}

	e.mu.Lock()
	e.stats.PassesRun++
	e.stats.EventsEmitted += int64(len(emitted))
	e.mu.Unlock()

	return emitted, nil
}

// takeEvaluationSlot enforces the detection throttle: it returns false when
// a pass ran within the configured interval, and otherwise claims the slot.
func (e *Engine) takeEvaluationSlot(key market.SeriesKey) bool {
	now := e.clock()

	e.mu.Lock()
	defer e.mu.Unlock()

	last := e.lastEval
	if e.cfg.ThrottleScope == ThrottleSeries {
		last = e.lastEvalByKey[key]
	}
	if now.Sub(last) < e.cfg.ThrottleInterval {
		e.stats.PassesThrottled++
		return false
	}

	if e.cfg.ThrottleScope == ThrottleSeries {
		e.lastEvalByKey[key] = now
	} else {
		e.lastEval = now
	}
	return true
}

func (e *Engine) dispatch(ev Event) {
	e.logger.Info().
		Str("pattern", ev.Name).
		Str("direction", string(ev.Direction)).
		Int("confidence", ev.Confidence).
		Str("instrument", ev.Instrument).
		Str("timeframe", ev.Timeframe).
		Int64("timestamp", ev.Timestamp).
		Msg("pattern detected")

	if e.bus == nil {
		return
	}
	e.bus.Publish(events.Event{
		Type: events.TypePatternDetected,
		Data: map[string]interface{}{
			"event": ev,
		},
	})
}
