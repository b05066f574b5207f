package market

import (
	"math/rand"
	"reflect"
	"testing"
)

func testKey() SeriesKey {
	return SeriesKey{Instrument: "BTCUSDT", Timeframe: "1m"}
}

func makeCandle(ts int64, close float64) Candle {
	return Candle{
		Timestamp:  ts,
		Open:       close - 0.5,
		High:       close + 1,
		Low:        close - 1,
		Close:      close,
		Volume:     100,
		Instrument: "BTCUSDT",
		Timeframe:  "1m",
	}
}

func makeCandles(n int) []Candle {
	candles := make([]Candle, n)
	for i := range candles {
		candles[i] = makeCandle(int64(i+1)*60000, 100+float64(i)*0.01)
	}
	return candles
}

func TestStoreCapacityBound(t *testing.T) {
	store := NewStore(100)
	key := testKey()

	if err := store.Merge(key, makeCandles(150), false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if got := store.Len(key); got != 100 {
		t.Fatalf("expected window trimmed to 100, got %d", got)
	}

	window := store.Get(key)
	if window[0].Timestamp != 51*60000 {
		t.Errorf("expected oldest candles evicted, window starts at %d", window[0].Timestamp)
	}
	if window[99].Timestamp != 150*60000 {
		t.Errorf("expected newest candle retained, window ends at %d", window[99].Timestamp)
	}
}

func TestStoreRealtimeReplacesFormingBar(t *testing.T) {
	store := NewStore(100)
	key := testKey()

	first := makeCandle(60000, 100)
	if err := store.Merge(key, []Candle{first}, true); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	updated := first
	updated.Close = 101
	updated.High = 102
	if err := store.Merge(key, []Candle{updated}, true); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if got := store.Len(key); got != 1 {
		t.Fatalf("same-timestamp update must replace, not append: len %d", got)
	}
	if got := store.Get(key)[0].Close; got != 101 {
		t.Errorf("expected updated close 101, got %v", got)
	}
}

func TestStoreRealtimeAppendsAndEvicts(t *testing.T) {
	store := NewStore(3)
	key := testKey()

	for i := 1; i <= 5; i++ {
		c := makeCandle(int64(i)*60000, 100)
		if err := store.Merge(key, []Candle{c}, true); err != nil {
			t.Fatalf("merge %d failed: %v", i, err)
		}
	}

	window := store.Get(key)
	if len(window) != 3 {
		t.Fatalf("expected window of 3, got %d", len(window))
	}
	if window[0].Timestamp != 3*60000 || window[2].Timestamp != 5*60000 {
		t.Errorf("expected oldest evicted first, got window %v..%v", window[0].Timestamp, window[2].Timestamp)
	}
}

func TestStoreRealtimeRequiresSingleCandle(t *testing.T) {
	store := NewStore(100)
	if err := store.Merge(testKey(), makeCandles(2), true); err == nil {
		t.Error("expected error for realtime batch of 2 candles")
	}
	if err := store.Merge(testKey(), nil, true); err == nil {
		t.Error("expected error for empty realtime batch")
	}
}

func TestStoreHistoricalOrderIndependent(t *testing.T) {
	candles := makeCandles(50)
	shuffled := make([]Candle, len(candles))
	copy(shuffled, candles)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	a := NewStore(100)
	b := NewStore(100)
	if err := a.Merge(testKey(), candles, false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := b.Merge(testKey(), shuffled, false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if !reflect.DeepEqual(a.Get(testKey()), b.Get(testKey())) {
		t.Error("historical merge must be order independent")
	}
}

func TestStoreHistoricalOverwritesByTimestamp(t *testing.T) {
	store := NewStore(100)
	key := testKey()

	if err := store.Merge(key, makeCandles(5), false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	revised := makeCandle(3*60000, 200)
	if err := store.Merge(key, []Candle{revised}, false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if got := store.Len(key); got != 5 {
		t.Fatalf("overwrite must not grow the window: len %d", got)
	}
	if got := store.Get(key)[2].Close; got != 200 {
		t.Errorf("expected overwritten close 200, got %v", got)
	}
}

func TestStoreRejectsBatchWithInvalidCandle(t *testing.T) {
	store := NewStore(100)
	key := testKey()

	batch := makeCandles(5)
	batch[3].High = batch[3].Low - 1

	if err := store.Merge(key, batch, false); err == nil {
		t.Fatal("expected batch rejection")
	}
	if got := store.Len(key); got != 0 {
		t.Errorf("rejected batch must leave window untouched, len %d", got)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore(100)
	key := testKey()

	if err := store.Merge(key, makeCandles(3), false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	snapshot := store.Get(key)
	snapshot[0].Close = 9999

	if got := store.Get(key)[0].Close; got == 9999 {
		t.Error("mutating a snapshot must not affect the store")
	}
}

func TestStoreSeriesIsolation(t *testing.T) {
	store := NewStore(100)
	keyA := SeriesKey{Instrument: "BTCUSDT", Timeframe: "1m"}
	keyB := SeriesKey{Instrument: "ETHUSDT", Timeframe: "1m"}

	if err := store.Merge(keyA, makeCandles(10), false); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if got := store.Len(keyB); got != 0 {
		t.Errorf("series must be isolated, keyB len %d", got)
	}
	if got := len(store.Keys()); got != 1 {
		t.Errorf("expected 1 series key, got %d", got)
	}
}
