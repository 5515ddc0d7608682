package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"SmartTrade/internal/domain/models"
	drepo "SmartTrade/internal/domain/repository"
	"SmartTrade/pkg/logger"
	"SmartTrade/pkg/util"

	"github.com/gorilla/websocket"
)

// Stream implements a MarketStream over the Alpaca market data
// WebSocket (wss://stream.data.alpaca.markets/v2/iex).
type Stream struct {
	cfg            Config
	streamURL      string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	symbols   []string
}

// NewStream creates an Alpaca market data stream.
func NewStream(cfg Config, streamURL string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.MarketStream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		cfg:            cfg,
		streamURL:      streamURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect dials the stream and authenticates.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("alpaca stream connect: %w", err)
	}

	auth := map[string]string{
		"action": "auth",
		"key":    s.cfg.APIKey,
		"secret": s.cfg.APISecret,
	}
	if err := conn.WriteJSON(auth); err != nil {
		_ = conn.Close()
		return fmt.Errorf("alpaca stream auth: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	s.log.Info("alpaca stream connected")
	return nil
}

// Subscribe requests trade prints for the given symbols.
func (s *Stream) Subscribe(ctx context.Context, symbols []string) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.symbols = symbols
	s.mu.Unlock()

	if conn == nil || !connected {
		return fmt.Errorf("alpaca stream not connected")
	}
	msg := map[string]interface{}{
		"action": "subscribe",
		"trades": symbols,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("alpaca stream subscribe: %w", err)
	}
	s.log.Info("alpaca stream subscribed", logger.Strings("symbols", symbols))
	return nil
}

type wsTrade struct {
	Type      string  `json:"T"`
	Symbol    string  `json:"S"`
	Price     float64 `json:"p"`
	Size      int64   `json:"s"`
	Timestamp string  `json:"t"`
}

// Read streams Tick events and errors until the context is cancelled or
// the connection drops. Both loops are bound to the connection at call
// time: the ping loop stops when the read loop exits, so a later
// Reconnect+Read never accumulates writers on one connection.
func (s *Stream) Read(ctx context.Context) (<-chan models.Tick, <-chan error) {
	ticks := make(chan models.Tick, 1024)
	errs := make(chan error, 1)

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		errs <- fmt.Errorf("alpaca stream conn nil")
		close(ticks)
		close(errs)
		return ticks, errs
	}

	sessionCtx, endSession := context.WithCancel(ctx)

	// ping loop; the read loop's deferred cancel ends it
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sessionCtx.Done():
				return
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	// read loop
	go func() {
		defer endSession()
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("alpaca stream read: %w", err)
					return
				}
				var frames []wsTrade
				if err := json.Unmarshal(b, &frames); err != nil {
					// ignore non-array control frames
					continue
				}
				for _, f := range frames {
					if f.Type != "t" {
						continue
					}
					ts, ok := util.ParseTime(f.Timestamp)
					if !ok {
						continue
					}
					tick := models.Tick{Symbol: f.Symbol, Price: f.Price, Size: f.Size, Timestamp: ts}
					select {
					case ticks <- tick:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes, waits, and re-establishes the subscription.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	symbols := s.symbols
	s.mu.Unlock()
	return s.Subscribe(ctx, symbols)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
