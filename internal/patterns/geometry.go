package patterns

import (
	"math"

	"candlescan/internal/market"
)

// Tolerances and thresholds for the geometric tests. Each constant is the
// single source of truth for its test family.
const (
	// priceEqualTolerance is the default relative tolerance for price equality (0.1%)
	priceEqualTolerance = 0.001
	// wickSymmetryTolerance is used when comparing upper vs lower wick lengths
	wickSymmetryTolerance = 0.1
	// spinningTopWickTolerance relaxes wick symmetry for spinning tops
	spinningTopWickTolerance = 0.3
	// tweezerTolerance is the relative tolerance for matching highs/lows (0.2%)
	tweezerTolerance = 0.002

	dojiMaxBodyRatio        = 0.1
	spinningTopMaxBodyRatio = 0.35
	marubozuMinBodyRatio    = 0.9

	wickToBodyMultiple  = 2.0 // Hammer/shooting star: dominant wick vs body
	oppositeWickMaxBody = 0.5 // Hammer/shooting star: opposite wick vs body

	haramiMaxBodyRatio = 0.5
	starMaxBodyRatio   = 0.3 // Middle candle of morning/evening star vs first body
	soldierMaxWickBody = 0.3 // Trend-side wick vs body for soldiers/crows

	trendLookback  = 5
	trendThreshold = 0.01 // 1% relative move over the lookback

	avgBodyLookback = 10
)

func bodySize(c market.Candle) float64 {
	return math.Abs(c.Close - c.Open)
}

func candleRange(c market.Candle) float64 {
	return c.High - c.Low
}

func upperWick(c market.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}

func lowerWick(c market.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

func isBullish(c market.Candle) bool {
	return c.Close > c.Open
}

func isBearish(c market.Candle) bool {
	return c.Close < c.Open
}

func bodyTop(c market.Candle) float64 {
	return math.Max(c.Open, c.Close)
}

func bodyBottom(c market.Candle) float64 {
	return math.Min(c.Open, c.Close)
}

func bodyMidpoint(c market.Candle) float64 {
	return (c.Open + c.Close) / 2
}

// priceEqual reports whether a and b are equal within a relative tolerance.
// Two exact zeros are considered equal.
func priceEqual(a, b, tolerance float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	avg := (math.Abs(a) + math.Abs(b)) / 2
	if avg == 0 {
		return false
	}
	return math.Abs(a-b)/avg < tolerance
}

// avgBodySize returns the mean body size of the last n candles in the window
// (fewer if the window is shorter). Used as a volatility reference.
func avgBodySize(window []market.Candle, n int) float64 {
	if len(window) == 0 {
		return 0
	}
	start := len(window) - n
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for _, c := range window[start:] {
		sum += bodySize(c)
	}
	return sum / float64(len(window)-start)
}

// trendDirection classifies the recent trend by comparing the close lookback
// bars back to the latest close: +1 above +1%, -1 below -1%, 0 otherwise.
// Windows too short to look back return 0 (sideways).
func trendDirection(window []market.Candle, lookback int) int {
	if len(window) <= lookback {
		return 0
	}
	ref := window[len(window)-1-lookback].Close
	if ref == 0 {
		return 0
	}
	change := (window[len(window)-1].Close - ref) / ref
	switch {
	case change > trendThreshold:
		return 1
	case change < -trendThreshold:
		return -1
	default:
		return 0
	}
}

// roundConfidence converts a raw confidence score to an integer 0-100.
func roundConfidence(v float64) int {
	return int(math.Round(v))
}

// capConfidence applies the 95-point ceiling used by the open-ended
// ratio-based formulas.
func capConfidence(v float64) float64 {
	return math.Min(95, v)
}
