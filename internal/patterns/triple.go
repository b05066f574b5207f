package patterns

import "candlescan/internal/market"

// Three-candle tests, evaluated on the last three candles.

// detectMorningStar matches a bearish candle, a small star, and a bullish
// candle closing above the first body's midpoint. A star that gaps below the
// first body strengthens the signal.
func detectMorningStar(first, second, third market.Candle) *Match {
	firstBody := bodySize(first)
	if !isBearish(first) || !isBullish(third) {
		return nil
	}
	if bodySize(second) >= starMaxBodyRatio*firstBody {
		return nil
	}
	if third.Close <= bodyMidpoint(first) {
		return nil
	}

	confidence := 70
	if bodyTop(second) < bodyBottom(first) {
		confidence = 85
	}
	return &Match{
		Name:        "Morning Star",
		Direction:   Bullish,
		Confidence:  confidence,
		Description: "Three-candle bullish reversal closing above the first body midpoint",
	}
}

// detectEveningStar is the bearish mirror of the morning star.
func detectEveningStar(first, second, third market.Candle) *Match {
	firstBody := bodySize(first)
	if !isBullish(first) || !isBearish(third) {
		return nil
	}
	if bodySize(second) >= starMaxBodyRatio*firstBody {
		return nil
	}
	if third.Close >= bodyMidpoint(first) {
		return nil
	}

	confidence := 70
	if bodyBottom(second) > bodyTop(first) {
		confidence = 85
	}
	return &Match{
		Name:        "Evening Star",
		Direction:   Bearish,
		Confidence:  confidence,
		Description: "Three-candle bearish reversal closing below the first body midpoint",
	}
}

// detectThreeSoldiersCrows matches three same-direction candles with
// monotonically advancing closes, each opening inside the previous body,
// with only a small wick on the trend side.
func detectThreeSoldiersCrows(first, second, third market.Candle) *Match {
	if isBullish(first) && isBullish(second) && isBullish(third) {
		if second.Close > first.Close && third.Close > second.Close &&
			opensInsideBody(second, first) && opensInsideBody(third, second) &&
			upperWick(first) < soldierMaxWickBody*bodySize(first) &&
			upperWick(second) < soldierMaxWickBody*bodySize(second) &&
			upperWick(third) < soldierMaxWickBody*bodySize(third) {
			return &Match{
				Name:        "Three White Soldiers",
				Direction:   Bullish,
				Confidence:  85,
				Description: "Three advancing bullish candles with small upper wicks",
			}
		}
	}

	if isBearish(first) && isBearish(second) && isBearish(third) {
		if second.Close < first.Close && third.Close < second.Close &&
			opensInsideBody(second, first) && opensInsideBody(third, second) &&
			lowerWick(first) < soldierMaxWickBody*bodySize(first) &&
			lowerWick(second) < soldierMaxWickBody*bodySize(second) &&
			lowerWick(third) < soldierMaxWickBody*bodySize(third) {
			return &Match{
				Name:        "Three Black Crows",
				Direction:   Bearish,
				Confidence:  85,
				Description: "Three declining bearish candles with small lower wicks",
			}
		}
	}

	return nil
}

func opensInsideBody(c, prev market.Candle) bool {
	return c.Open > bodyBottom(prev) && c.Open < bodyTop(prev)
}
