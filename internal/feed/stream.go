package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"candlescan/internal/events"
	"candlescan/internal/market"
)

const (
	reconnectDelay   = 3 * time.Second
	dialRetryDelay   = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

// combinedStreamMessage is the envelope of a combined-stream payload
type combinedStreamMessage struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// klineEvent is the kline stream payload
type klineEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Symbol    string `json:"s"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		Close     string `json:"c"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"v"`
		IsClosed  bool   `json:"x"`
	} `json:"k"`
}

// Stream is a live kline feed over a combined websocket stream. It parses
// each kline event into a single-candle realtime update and hands it to the
// configured handler. Malformed payloads are counted and dropped; they never
// reach the store.
type Stream struct {
	baseURL string
	subs    *SubscriptionManager
	handler Handler
	bus     *events.Bus
	logger  zerolog.Logger

	mu         sync.RWMutex
	conn       *websocket.Conn
	running    bool
	reconnects int64
}

// NewStream creates a stream client. baseURL is the websocket endpoint
// (e.g. "wss://stream.binance.com:9443").
func NewStream(baseURL string, subs *SubscriptionManager, handler Handler, bus *events.Bus, logger zerolog.Logger) *Stream {
	return &Stream{
		baseURL: strings.TrimRight(baseURL, "/"),
		subs:    subs,
		handler: handler,
		bus:     bus,
		logger:  logger.With().Str("component", "feed").Logger(),
	}
}

// Start launches the connect/read loop in a goroutine.
func (s *Stream) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.connectLoop()
}

// Stop terminates the stream and closes the connection.
func (s *Stream) Stop() {
	s.mu.Lock()
	s.running = false
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Reconnects returns how many reconnect attempts have been made.
func (s *Stream) Reconnects() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reconnects
}

func (s *Stream) isRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Stream) connectLoop() {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	for s.isRunning() {
		streams := s.subs.BuildStreamList()
		if len(streams) == 0 {
			s.logger.Warn().Msg("no stream subscriptions, feed idle")
			time.Sleep(dialRetryDelay)
			continue
		}

		url := fmt.Sprintf("%s/stream?streams=%s", s.baseURL, strings.Join(streams, "/"))
		s.logger.Info().Int("streams", len(streams)).Msg("connecting to kline stream")

		conn, _, err := dialer.Dial(url, nil)
		if err != nil {
			s.logger.Error().Err(err).Msg("stream dial failed, retrying")
			s.mu.Lock()
			s.reconnects++
			s.mu.Unlock()
			time.Sleep(dialRetryDelay)
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.logger.Info().Msg("kline stream connected")
		if s.bus != nil {
			s.bus.PublishFeedStatus(events.TypeFeedConnected, s.baseURL, len(streams))
		}

		s.readLoop(conn)

		if !s.isRunning() {
			return
		}
		if s.bus != nil {
			s.bus.PublishFeedStatus(events.TypeFeedDisconnected, s.baseURL, len(streams))
		}
		s.logger.Warn().Msg("kline stream lost, reconnecting")
		s.mu.Lock()
		s.reconnects++
		s.mu.Unlock()
		time.Sleep(reconnectDelay)
	}
}

func (s *Stream) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info().Msg("stream closed normally")
			} else if s.isRunning() {
				s.logger.Error().Err(err).Msg("stream read error")
			}
			return
		}
		s.handleMessage(message)
	}
}

func (s *Stream) handleMessage(message []byte) {
	var envelope combinedStreamMessage
	payload := message
	if err := json.Unmarshal(message, &envelope); err == nil && len(envelope.Data) > 0 {
		payload = envelope.Data
	}

	update, err := ParseKlineMessage(payload)
	if err != nil {
		s.subs.RecordParseFailure()
		s.logger.Warn().Err(err).Msg("dropping unparseable stream payload")
		return
	}
	s.subs.RecordUpdate()
	s.handler(update)
}

// ParseKlineMessage converts a raw kline event payload into a realtime
// update carrying one validated candle.
func ParseKlineMessage(payload []byte) (Update, error) {
	var ev klineEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Update{}, fmt.Errorf("decode kline event: %w", err)
	}
	if ev.EventType != "kline" {
		return Update{}, fmt.Errorf("unexpected event type %q", ev.EventType)
	}

	k := ev.Kline
	candle := market.Candle{
		Timestamp:  k.OpenTime,
		Instrument: strings.ToUpper(k.Symbol),
		Timeframe:  k.Interval,
	}

	var err error
	if candle.Open, err = strconv.ParseFloat(k.Open, 64); err != nil {
		return Update{}, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	if candle.High, err = strconv.ParseFloat(k.High, 64); err != nil {
		return Update{}, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	if candle.Low, err = strconv.ParseFloat(k.Low, 64); err != nil {
		return Update{}, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	if candle.Close, err = strconv.ParseFloat(k.Close, 64); err != nil {
		return Update{}, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	if candle.Volume, err = strconv.ParseFloat(k.Volume, 64); err != nil {
		return Update{}, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}

	if err := candle.Validate(); err != nil {
		return Update{}, fmt.Errorf("invalid candle in stream payload: %w", err)
	}

	return Update{
		Instrument: candle.Instrument,
		Timeframe:  candle.Timeframe,
		Candles:    []market.Candle{candle},
		IsRealtime: true,
	}, nil
}
