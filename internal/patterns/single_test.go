package patterns

import (
	"testing"

	"candlescan/internal/market"
)

func TestDetectDojiSubtypes(t *testing.T) {
	tests := []struct {
		name       string
		candle     market.Candle
		wantName   string
		wantConf   int
	}{
		{
			name:     "long-legged doji with symmetric wicks",
			candle:   market.Candle{Open: 100, Close: 100.02, High: 100.5, Low: 99.5},
			wantName: "Long-Legged Doji",
			wantConf: 98, // Body ratio 0.02
		},
		{
			name:     "gravestone doji with dominant upper wick",
			candle:   market.Candle{Open: 100, Close: 100.01, High: 101, Low: 99.99},
			wantName: "Gravestone Doji",
			wantConf: 99,
		},
		{
			name:     "dragonfly doji with dominant lower wick",
			candle:   market.Candle{Open: 100, Close: 99.99, High: 100.01, Low: 99},
			wantName: "Dragonfly Doji",
			wantConf: 99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := detectDoji(tt.candle)
			if m == nil {
				t.Fatal("expected a match")
			}
			if m.Name != tt.wantName {
				t.Errorf("expected %s, got %s", tt.wantName, m.Name)
			}
			if m.Confidence != tt.wantConf {
				t.Errorf("expected confidence %d, got %d", tt.wantConf, m.Confidence)
			}
			if m.Direction != Neutral {
				t.Errorf("doji must be neutral, got %s", m.Direction)
			}
		})
	}
}

func TestDetectDojiRejects(t *testing.T) {
	// Body ratio at 20% is no doji
	if m := detectDoji(market.Candle{Open: 100, Close: 100.2, High: 100.6, Low: 99.6}); m != nil {
		t.Errorf("expected no doji for 20%% body, got %s", m.Name)
	}
	// Zero range cannot be classified
	if m := detectDoji(market.Candle{Open: 100, Close: 100, High: 100, Low: 100}); m != nil {
		t.Error("expected no match for zero-range candle")
	}
}

func TestDetectHammerVsHangingMan(t *testing.T) {
	// Body 1, lower wick 5, upper wick 0.4
	c := market.Candle{Open: 100, Close: 101, High: 101.4, Low: 95}

	m := detectHammer(c, -1)
	if m == nil {
		t.Fatal("expected a match after downtrend")
	}
	if m.Name != "Hammer" || m.Direction != Bullish {
		t.Errorf("expected bullish Hammer, got %s %s", m.Name, m.Direction)
	}
	if m.Confidence != 95 {
		t.Errorf("expected confidence capped at 95, got %d", m.Confidence)
	}

	m = detectHammer(c, 0)
	if m == nil {
		t.Fatal("expected a match without downtrend")
	}
	if m.Name != "Hanging Man" || m.Direction != Bearish {
		t.Errorf("expected bearish Hanging Man, got %s %s", m.Name, m.Direction)
	}
}

func TestDetectHammerRejects(t *testing.T) {
	// Zero body
	if m := detectHammer(market.Candle{Open: 100, Close: 100, High: 100.1, Low: 99}, -1); m != nil {
		t.Error("expected no match for zero-body candle")
	}
	// Lower wick under twice the body
	if m := detectHammer(market.Candle{Open: 100, Close: 101, High: 101.1, Low: 99.5}, -1); m != nil {
		t.Error("expected no match for short lower wick")
	}
	// Upper wick too large
	if m := detectHammer(market.Candle{Open: 100, Close: 101, High: 102, Low: 97}, -1); m != nil {
		t.Error("expected no match for large upper wick")
	}
}

func TestDetectShootingStarVsInvertedHammer(t *testing.T) {
	// Body 0.2, upper wick 1.0, lower wick 0.05
	c := market.Candle{Open: 101, Close: 100.8, High: 102, Low: 100.75}

	m := detectShootingStar(c, 1)
	if m == nil {
		t.Fatal("expected a match after uptrend")
	}
	if m.Name != "Shooting Star" || m.Direction != Bearish {
		t.Errorf("expected bearish Shooting Star, got %s %s", m.Name, m.Direction)
	}
	if m.Confidence != 95 {
		t.Errorf("expected confidence capped at 95, got %d", m.Confidence)
	}

	m = detectShootingStar(c, 0)
	if m == nil {
		t.Fatal("expected a match without uptrend")
	}
	if m.Name != "Inverted Hammer" || m.Direction != Bullish {
		t.Errorf("expected bullish Inverted Hammer, got %s %s", m.Name, m.Direction)
	}
}

func TestDetectSpinningTop(t *testing.T) {
	// Body ratio 0.2, wicks 0.4 each
	m := detectSpinningTop(market.Candle{Open: 100, Close: 100.2, High: 100.6, Low: 99.6})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Confidence != 50 {
		t.Errorf("expected confidence 50, got %d", m.Confidence)
	}
	if m.Direction != Neutral {
		t.Errorf("spinning top must be neutral, got %s", m.Direction)
	}

	// A doji-sized body belongs to the doji family, not here
	if m := detectSpinningTop(market.Candle{Open: 100, Close: 100.02, High: 100.5, Low: 99.5}); m != nil {
		t.Error("expected no spinning top for doji-sized body")
	}
	// Asymmetric wicks
	if m := detectSpinningTop(market.Candle{Open: 100, Close: 100.2, High: 100.9, Low: 99.9}); m != nil {
		t.Error("expected no spinning top for asymmetric wicks")
	}
}

func TestDetectMarubozu(t *testing.T) {
	m := detectMarubozu(market.Candle{Open: 100, Close: 101, High: 101.02, Low: 99.99})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Name != "Bullish Marubozu" || m.Direction != Bullish {
		t.Errorf("expected Bullish Marubozu, got %s %s", m.Name, m.Direction)
	}
	if m.Confidence != 97 {
		t.Errorf("expected confidence 97, got %d", m.Confidence)
	}

	m = detectMarubozu(market.Candle{Open: 101, Close: 100, High: 101.02, Low: 99.99})
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Name != "Bearish Marubozu" || m.Direction != Bearish {
		t.Errorf("expected Bearish Marubozu, got %s %s", m.Name, m.Direction)
	}

	// Body at 60% of the range is an ordinary candle
	if m := detectMarubozu(market.Candle{Open: 100, Close: 100.6, High: 100.8, Low: 99.8}); m != nil {
		t.Error("expected no marubozu for partial body")
	}
}
