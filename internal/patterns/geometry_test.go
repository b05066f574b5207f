package patterns

import (
	"testing"

	"candlescan/internal/market"
)

func TestPriceEqual(t *testing.T) {
	tests := []struct {
		a, b, tol float64
		want      bool
	}{
		{0, 0, 0.001, true},
		{0, 1, 0.001, false},
		{100, 100.05, 0.001, true},
		{100, 100.2, 0.001, false},
		{0.48, 0.5, 0.1, true},
		{0.3, 0.5, 0.1, false},
	}
	for _, tt := range tests {
		if got := priceEqual(tt.a, tt.b, tt.tol); got != tt.want {
			t.Errorf("priceEqual(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.tol, got, tt.want)
		}
	}
}

func flatCandle(ts int64, close float64) market.Candle {
	return market.Candle{
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
	}
}

func TestTrendDirection(t *testing.T) {
	rising := make([]market.Candle, 6)
	for i := range rising {
		rising[i] = flatCandle(int64(i), 100+float64(i))
	}
	if got := trendDirection(rising, trendLookback); got != 1 {
		t.Errorf("expected uptrend, got %d", got)
	}

	falling := make([]market.Candle, 6)
	for i := range falling {
		falling[i] = flatCandle(int64(i), 100-float64(i))
	}
	if got := trendDirection(falling, trendLookback); got != -1 {
		t.Errorf("expected downtrend, got %d", got)
	}

	sideways := make([]market.Candle, 6)
	for i := range sideways {
		sideways[i] = flatCandle(int64(i), 100)
	}
	if got := trendDirection(sideways, trendLookback); got != 0 {
		t.Errorf("expected sideways, got %d", got)
	}

	// A window too short to look back is sideways by definition
	if got := trendDirection(rising[:5], trendLookback); got != 0 {
		t.Errorf("expected 0 for short window, got %d", got)
	}
}

func TestAvgBodySize(t *testing.T) {
	if got := avgBodySize(nil, avgBodyLookback); got != 0 {
		t.Errorf("expected 0 for empty window, got %v", got)
	}

	window := []market.Candle{
		{Open: 100, Close: 102, High: 102, Low: 100},
		{Open: 100, Close: 104, High: 104, Low: 100},
	}
	if got := avgBodySize(window, avgBodyLookback); got != 3 {
		t.Errorf("expected avg body 3, got %v", got)
	}
}
