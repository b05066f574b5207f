package patterns

import "fmt"

// Direction represents the trading bias a pattern signals
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Family identifies one pattern test in the battery. Configuration enables
// or disables whole families; a disabled family is skipped entirely, not
// scored and dropped.
type Family string

const (
	FamilyDoji          Family = "doji"
	FamilyHammer        Family = "hammer"
	FamilyShootingStar  Family = "shooting_star"
	FamilySpinningTop   Family = "spinning_top"
	FamilyMarubozu      Family = "marubozu"
	FamilyEngulfing     Family = "engulfing"
	FamilyHarami        Family = "harami"
	FamilyTweezer       Family = "tweezer"
	FamilyPiercing      Family = "piercing"
	FamilyMorningStar   Family = "morning_star"
	FamilyEveningStar   Family = "evening_star"
	FamilyThreeSoldiers Family = "three_soldiers"
)

// AllFamilies lists every pattern family in battery evaluation order.
var AllFamilies = []Family{
	FamilyDoji,
	FamilyHammer,
	FamilyShootingStar,
	FamilySpinningTop,
	FamilyMarubozu,
	FamilyEngulfing,
	FamilyHarami,
	FamilyTweezer,
	FamilyPiercing,
	FamilyMorningStar,
	FamilyEveningStar,
	FamilyThreeSoldiers,
}

// ParseFamily maps a configuration string onto a known family. The set is
// closed: unknown names are an error, not a silently ignored filter entry.
func ParseFamily(name string) (Family, error) {
	f := Family(name)
	for _, known := range AllFamilies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown pattern family %q", name)
}

// Match is one detected pattern occurrence. Matches are immutable once
// produced; their identity for deduplication is (Name, Timestamp).
type Match struct {
	Name        string    `json:"name"`
	Direction   Direction `json:"direction"`
	Confidence  int       `json:"confidence"` // 0-100
	Description string    `json:"description"`
	Timestamp   int64     `json:"timestamp"` // Timestamp of the triggering candle
	Instrument  string    `json:"instrument"`
	Timeframe   string    `json:"timeframe"`
}

// Config controls which tests run and the confidence floor for reporting.
//
// Enabled == nil means all families are enabled; an empty non-nil slice
// means none are.
type Config struct {
	MinConfidence int      `json:"min_confidence"` // 0-100
	Enabled       []Family `json:"enabled"`
}

func (c Config) familyEnabled(f Family) bool {
	if c.Enabled == nil {
		return true
	}
	for _, e := range c.Enabled {
		if e == f {
			return true
		}
	}
	return false
}
