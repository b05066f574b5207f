package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"candlescan/internal/market"
)

// Backfiller seeds series windows with historical klines over REST before
// the live stream takes over.
type Backfiller struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewBackfiller creates a backfiller against a kline REST endpoint
// (e.g. "https://api.binance.com").
func NewBackfiller(baseURL string, logger zerolog.Logger) *Backfiller {
	return &Backfiller{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "backfill").Logger(),
	}
}

// FetchKlines fetches up to limit historical candles for one series.
func (b *Backfiller) FetchKlines(instrument, timeframe string, limit int) ([]market.Candle, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(instrument))
	params.Set("interval", timeframe)
	params.Set("limit", strconv.Itoa(limit))

	resp, err := b.httpClient.Get(fmt.Sprintf("%s/api/v3/klines?%s", b.baseURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s/%s: %w", instrument, timeframe, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch klines for %s/%s: status %d", instrument, timeframe, resp.StatusCode)
	}

	// Kline REST rows are heterogeneous arrays:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode klines response: %w", err)
	}

	candles := make([]market.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row %d: expected at least 6 fields, got %d", i, len(row))
		}
		c := market.Candle{
			Instrument: strings.ToUpper(instrument),
			Timeframe:  timeframe,
		}
		if err := json.Unmarshal(row[0], &c.Timestamp); err != nil {
			return nil, fmt.Errorf("kline row %d: parse open time: %w", i, err)
		}
		fields := []struct {
			raw json.RawMessage
			dst *float64
		}{
			{row[1], &c.Open},
			{row[2], &c.High},
			{row[3], &c.Low},
			{row[4], &c.Close},
			{row[5], &c.Volume},
		}
		for _, f := range fields {
			var s string
			if err := json.Unmarshal(f.raw, &s); err != nil {
				return nil, fmt.Errorf("kline row %d: parse price field: %w", i, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("kline row %d: parse price value %q: %w", i, s, err)
			}
			*f.dst = v
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("kline row %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// Backfill fetches history for every subscribed series and delivers each
// batch as a historical update. Failures are logged and skipped; the live
// stream will still populate the window, just more slowly.
func (b *Backfiller) Backfill(subs *SubscriptionManager, limit int, handler Handler) {
	for _, key := range subs.List() {
		candles, err := b.FetchKlines(key.Instrument, key.Timeframe, limit)
		if err != nil {
			b.logger.Warn().Err(err).Str("series", key.String()).Msg("backfill failed, relying on live stream")
			continue
		}
		b.logger.Info().Str("series", key.String()).Int("candles", len(candles)).Msg("backfilled series")
		handler(Update{
			Instrument: key.Instrument,
			Timeframe:  key.Timeframe,
			Candles:    candles,
			IsRealtime: false,
		})
	}
}
