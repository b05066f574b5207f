// Package feed delivers market data updates to the detection pipeline.
// The feed owns input normalization: it converts wire payloads into
// validated candles tagged with instrument and timeframe, with timestamps
// in milliseconds. The core never fetches data itself.
package feed

import "candlescan/internal/market"

// Update is one batch of candles for a single series. Realtime updates
// carry exactly one candle: the currently-forming or just-closed bar.
type Update struct {
	Instrument string
	Timeframe  string
	Candles    []market.Candle
	IsRealtime bool
}

// Handler consumes feed updates. Each update is processed to completion
// before the next is delivered.
type Handler func(Update)
