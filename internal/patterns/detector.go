package patterns

import (
	"sort"

	"candlescan/internal/market"
)

// Detect evaluates the full pattern battery against the tail of the window
// (oldest candle first) and returns every match with confidence at or above
// cfg.MinConfidence, sorted by confidence descending. Ties keep battery
// evaluation order.
//
// Detect is a pure function of its inputs: it never mutates the window and
// calling it twice on the same window returns identical results. Tests that
// need more candles than the window holds silently produce no match.
func Detect(window []market.Candle, cfg Config) []Match {
	if len(window) == 0 {
		return nil
	}

	last := window[len(window)-1]
	trend := trendDirection(window, trendLookback)

	var matches []Match
	add := func(m *Match) {
		if m != nil {
			matches = append(matches, *m)
		}
	}

	// Single-candle battery
	if cfg.familyEnabled(FamilyDoji) {
		add(detectDoji(last))
	}
	if cfg.familyEnabled(FamilyHammer) {
		add(detectHammer(last, trend))
	}
	if cfg.familyEnabled(FamilyShootingStar) {
		add(detectShootingStar(last, trend))
	}
	if cfg.familyEnabled(FamilySpinningTop) {
		add(detectSpinningTop(last))
	}
	if cfg.familyEnabled(FamilyMarubozu) {
		add(detectMarubozu(last))
	}

	// Two-candle battery
	if len(window) >= 2 {
		prev := window[len(window)-2]
		if cfg.familyEnabled(FamilyEngulfing) {
			add(detectEngulfing(prev, last))
		}
		if cfg.familyEnabled(FamilyHarami) {
			add(detectHarami(prev, last))
		}
		if cfg.familyEnabled(FamilyTweezer) {
			add(detectTweezer(prev, last))
		}
		if cfg.familyEnabled(FamilyPiercing) {
			add(detectPiercing(prev, last))
		}
	}

	// Three-candle battery
	if len(window) >= 3 {
		first := window[len(window)-3]
		second := window[len(window)-2]
		if cfg.familyEnabled(FamilyMorningStar) {
			add(detectMorningStar(first, second, last))
		}
		if cfg.familyEnabled(FamilyEveningStar) {
			add(detectEveningStar(first, second, last))
		}
		if cfg.familyEnabled(FamilyThreeSoldiers) {
			add(detectThreeSoldiersCrows(first, second, last))
		}
	}

	// Annotate with the triggering candle, filter, sort
	kept := matches[:0]
	for _, m := range matches {
		if m.Confidence < cfg.MinConfidence {
			continue
		}
		m.Timestamp = last.Timestamp
		m.Instrument = last.Instrument
		m.Timeframe = last.Timeframe
		kept = append(kept, m)
	}
	matches = kept

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}
