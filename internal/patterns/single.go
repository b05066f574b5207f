package patterns

import "candlescan/internal/market"

// Single-candle tests. Each operates on the last candle of the window; the
// prevailing trend is computed once per detection pass and passed in.

// detectDoji matches the doji family: a body under 10% of the range.
// The subtype is chosen by wick shape.
func detectDoji(c market.Candle) *Match {
	rng := candleRange(c)
	if rng <= 0 {
		return nil
	}
	bodyRatio := bodySize(c) / rng
	if bodyRatio >= dojiMaxBodyRatio {
		return nil
	}

	upper := upperWick(c)
	lower := lowerWick(c)

	name := "Doji"
	description := "Indecision candle with a negligible body"
	switch {
	case upper > 2*lower:
		name = "Gravestone Doji"
		description = "Doji with a dominant upper wick, rejection of higher prices"
	case lower > 2*upper:
		name = "Dragonfly Doji"
		description = "Doji with a dominant lower wick, rejection of lower prices"
	case priceEqual(upper, lower, wickSymmetryTolerance):
		name = "Long-Legged Doji"
		description = "Doji with long symmetric wicks, strong indecision"
	}

	return &Match{
		Name:        name,
		Direction:   Neutral,
		Confidence:  roundConfidence((1-bodyRatio)*80 + 20),
		Description: description,
	}
}

// detectHammer matches a long lower wick with a small upper wick. After a
// downtrend it is a Hammer (bullish); otherwise a Hanging Man (bearish).
func detectHammer(c market.Candle, trend int) *Match {
	body := bodySize(c)
	if body <= 0 {
		return nil
	}
	if lowerWick(c) < wickToBodyMultiple*body || upperWick(c) >= oppositeWickMaxBody*body {
		return nil
	}

	confidence := roundConfidence(capConfidence(lowerWick(c)/body*20 + 50))
	if trend == -1 {
		return &Match{
			Name:        "Hammer",
			Direction:   Bullish,
			Confidence:  confidence,
			Description: "Long lower wick after a downtrend, potential bullish reversal",
		}
	}
	return &Match{
		Name:        "Hanging Man",
		Direction:   Bearish,
		Confidence:  confidence,
		Description: "Long lower wick without a preceding downtrend, potential bearish reversal",
	}
}

// detectShootingStar matches a long upper wick with a small lower wick.
// After an uptrend it is a Shooting Star (bearish); otherwise an Inverted
// Hammer (bullish).
func detectShootingStar(c market.Candle, trend int) *Match {
	body := bodySize(c)
	if body <= 0 {
		return nil
	}
	if upperWick(c) < wickToBodyMultiple*body || lowerWick(c) >= oppositeWickMaxBody*body {
		return nil
	}

	confidence := roundConfidence(capConfidence(upperWick(c)/body*20 + 50))
	if trend == 1 {
		return &Match{
			Name:        "Shooting Star",
			Direction:   Bearish,
			Confidence:  confidence,
			Description: "Long upper wick after an uptrend, potential bearish reversal",
		}
	}
	return &Match{
		Name:        "Inverted Hammer",
		Direction:   Bullish,
		Confidence:  confidence,
		Description: "Long upper wick without a preceding uptrend, potential bullish reversal",
	}
}

// detectSpinningTop matches a modest body with roughly symmetric wicks.
func detectSpinningTop(c market.Candle) *Match {
	rng := candleRange(c)
	if rng <= 0 {
		return nil
	}
	bodyRatio := bodySize(c) / rng
	if bodyRatio <= dojiMaxBodyRatio || bodyRatio >= spinningTopMaxBodyRatio {
		return nil
	}
	if !priceEqual(upperWick(c), lowerWick(c), spinningTopWickTolerance) {
		return nil
	}

	return &Match{
		Name:        "Spinning Top",
		Direction:   Neutral,
		Confidence:  roundConfidence(70 - bodyRatio*100),
		Description: "Small body with symmetric wicks, market indecision",
	}
}

// detectMarubozu matches a body that fills over 90% of the range.
func detectMarubozu(c market.Candle) *Match {
	rng := candleRange(c)
	if rng <= 0 {
		return nil
	}
	bodyRatio := bodySize(c) / rng
	if bodyRatio <= marubozuMinBodyRatio {
		return nil
	}

	name := "Bullish Marubozu"
	direction := Bullish
	description := "Full-bodied bullish candle, strong buying pressure"
	if isBearish(c) {
		name = "Bearish Marubozu"
		direction = Bearish
		description = "Full-bodied bearish candle, strong selling pressure"
	}

	return &Match{
		Name:        name,
		Direction:   direction,
		Confidence:  roundConfidence(bodyRatio * 100),
		Description: description,
	}
}
