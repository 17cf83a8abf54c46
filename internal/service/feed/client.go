package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"ScoreFuse/internal/domain/models"
	drepo "ScoreFuse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a ScoreStream backed by the upstream analyzer
// WebSocket feed.
type Client struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new score feed client.
func New(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.ScoreStream {
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection and subscribes to the
// configured symbols.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	log.Printf("feed: connected")

	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		log.Printf("feed: subscribed %s", s)
	}
	return nil
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

type feedScore struct {
	Symbol string             `json:"symbol"`
	Score  models.SourceScore `json:"score"`
}

type feedMessage struct {
	Type string      `json:"type"`
	Data []feedScore `json:"data"`
}

// Read streams score events and errors. The read loop ends on the first
// read error; the caller reconnects and calls Read again.
func (c *Client) Read(ctx context.Context) (<-chan models.ScoreEvent, <-chan error) {
	events := make(chan models.ScoreEvent, 256)
	errs := make(chan error, 1)
	conn := c.current()

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		if conn == nil {
			errs <- fmt.Errorf("feed: not connected")
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("feed read: %w", err)
				return
			}
			var m feedMessage
			if err := json.Unmarshal(b, &m); err != nil {
				// ignore non-score frames
				continue
			}
			if m.Type != "score" {
				continue
			}
			for _, d := range m.Data {
				if !d.Score.Kind.Valid() || d.Symbol == "" {
					continue
				}
				ev := models.ScoreEvent{Symbol: d.Symbol, Score: d.Score}
				select {
				case events <- ev:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return events, errs
}

// Reconnect closes and re-establishes the connection.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	return c.Connect(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
