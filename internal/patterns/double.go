package patterns

import "candlescan/internal/market"

// Two-candle tests, evaluated on the last two candles (prev, curr).
// Tests dividing by a body length bail out on a zero body rather than
// guarding with an epsilon, so edge-case windows classify the same way
// whatever the price scale.

// detectEngulfing matches a candle whose body strictly contains the
// previous, opposite-colored body.
func detectEngulfing(prev, curr market.Candle) *Match {
	prevBody := bodySize(prev)
	currBody := bodySize(curr)
	if prevBody == 0 || currBody == 0 {
		return nil
	}
	if isBullish(prev) == isBullish(curr) {
		return nil
	}
	if bodyTop(curr) <= bodyTop(prev) || bodyBottom(curr) >= bodyBottom(prev) {
		return nil
	}

	confidence := roundConfidence(capConfidence(50 + currBody/prevBody*20))
	if isBullish(curr) {
		return &Match{
			Name:        "Bullish Engulfing",
			Direction:   Bullish,
			Confidence:  confidence,
			Description: "Bullish body fully engulfs the previous bearish body",
		}
	}
	return &Match{
		Name:        "Bearish Engulfing",
		Direction:   Bearish,
		Confidence:  confidence,
		Description: "Bearish body fully engulfs the previous bullish body",
	}
}

// detectHarami matches a small candle whose body sits strictly inside the
// previous, opposite-colored body.
func detectHarami(prev, curr market.Candle) *Match {
	prevBody := bodySize(prev)
	currBody := bodySize(curr)
	if prevBody == 0 || currBody == 0 {
		return nil
	}
	if isBullish(prev) == isBullish(curr) {
		return nil
	}
	if bodyTop(curr) >= bodyTop(prev) || bodyBottom(curr) <= bodyBottom(prev) {
		return nil
	}
	sizeRatio := currBody / prevBody
	if sizeRatio >= haramiMaxBodyRatio {
		return nil
	}

	confidence := roundConfidence(60 + (haramiMaxBodyRatio-sizeRatio)*60)
	if isBullish(curr) {
		return &Match{
			Name:        "Bullish Harami",
			Direction:   Bullish,
			Confidence:  confidence,
			Description: "Small bullish body inside the previous bearish body",
		}
	}
	return &Match{
		Name:        "Bearish Harami",
		Direction:   Bearish,
		Confidence:  confidence,
		Description: "Small bearish body inside the previous bullish body",
	}
}

// detectTweezer matches two opposite-colored candles sharing a high
// (Tweezer Top) or a low (Tweezer Bottom) within tolerance.
func detectTweezer(prev, curr market.Candle) *Match {
	if priceEqual(prev.High, curr.High, tweezerTolerance) && isBullish(prev) && isBearish(curr) {
		return &Match{
			Name:        "Tweezer Top",
			Direction:   Bearish,
			Confidence:  70,
			Description: "Matching highs with a bearish reversal candle",
		}
	}
	if priceEqual(prev.Low, curr.Low, tweezerTolerance) && isBearish(prev) && isBullish(curr) {
		return &Match{
			Name:        "Tweezer Bottom",
			Direction:   Bullish,
			Confidence:  70,
			Description: "Matching lows with a bullish reversal candle",
		}
	}
	return nil
}

// detectPiercing matches the Piercing Line (bullish) and its mirror, the
// Dark Cloud Cover (bearish): an open beyond the previous extreme closing
// deep into the previous body.
func detectPiercing(prev, curr market.Candle) *Match {
	prevBody := bodySize(prev)
	if prevBody == 0 {
		return nil
	}

	if isBearish(prev) && isBullish(curr) &&
		curr.Open < prev.Low &&
		curr.Close > bodyMidpoint(prev) && curr.Close < prev.Open {
		penetration := (curr.Close - bodyBottom(prev)) / prevBody
		return &Match{
			Name:        "Piercing Line",
			Direction:   Bullish,
			Confidence:  roundConfidence(50 + penetration*40),
			Description: "Gap down recovered past the previous body midpoint",
		}
	}

	if isBullish(prev) && isBearish(curr) &&
		curr.Open > prev.High &&
		curr.Close < bodyMidpoint(prev) && curr.Close > prev.Open {
		penetration := (bodyTop(prev) - curr.Close) / prevBody
		return &Match{
			Name:        "Dark Cloud Cover",
			Direction:   Bearish,
			Confidence:  roundConfidence(50 + penetration*40),
			Description: "Gap up sold off past the previous body midpoint",
		}
	}

	return nil
}
