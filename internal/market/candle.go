package market

import (
	"fmt"
	"math"
)

// Candle represents one OHLCV bar for a fixed time interval
type Candle struct {
	Timestamp  int64   `json:"timestamp"` // Open time in milliseconds
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     float64 `json:"volume"`
	Instrument string  `json:"instrument"`
	Timeframe  string  `json:"timeframe"`
}

// SeriesKey identifies one candle series (one window in the store)
type SeriesKey struct {
	Instrument string
	Timeframe  string
}

func (k SeriesKey) String() string {
	return k.Instrument + ":" + k.Timeframe
}

// Validate checks the OHLC invariants of a single candle.
// The store calls this on every incoming batch so a malformed payload
// can never corrupt a window.
func (c Candle) Validate() error {
	for name, v := range map[string]float64{
		"open": c.Open, "high": c.High, "low": c.Low, "close": c.Close, "volume": c.Volume,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("candle %d: non-finite %s value", c.Timestamp, name)
		}
	}
	if c.High < c.Low {
		return fmt.Errorf("candle %d: high %.8f below low %.8f", c.Timestamp, c.High, c.Low)
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("candle %d: low %.8f above body", c.Timestamp, c.Low)
	}
	if c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("candle %d: high %.8f below body", c.Timestamp, c.High)
	}
	if c.Volume < 0 {
		return fmt.Errorf("candle %d: negative volume %.8f", c.Timestamp, c.Volume)
	}
	return nil
}
