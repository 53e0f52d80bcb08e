// Package telemetry subscribes to the backend's system_stats push feed and
// keeps the sliding chart window.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prabalesh/aideck/internal/models"
)

// EventSystemStats is the only push event the dashboard consumes.
const EventSystemStats = "system_stats"

// StreamPath is where the backend serves the push feed.
const StreamPath = "/ws"

// Envelope is one push frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Channel is one live push subscription. Events stop when the connection
// drops or Close is called; there is no reconnect and no replay.
type Channel struct {
	conn   *websocket.Conn
	events chan models.SystemStats
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// StreamURL converts the backend base URL into the push feed URL.
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend url scheme %q", u.Scheme)
	}
	u.Path += StreamPath
	return u.String(), nil
}

// Dial opens the subscription. The returned channel is live until Close or
// until the server goes away.
func Dial(ctx context.Context, streamURL string, logger *slog.Logger) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", streamURL, err)
	}

	c := &Channel{
		conn:   conn,
		events: make(chan models.SystemStats, 16),
		done:   make(chan struct{}),
		logger: logger,
	}
	go c.readLoop()
	return c, nil
}

// Events delivers decoded samples. It is closed when the subscription ends.
func (c *Channel) Events() <-chan models.SystemStats {
	return c.events
}

// Next blocks for the next sample. It returns false once the subscription
// has ended or been closed, even if samples are still buffered.
func (c *Channel) Next() (models.SystemStats, bool) {
	select {
	case <-c.done:
		return models.SystemStats{}, false
	default:
	}
	select {
	case <-c.done:
		return models.SystemStats{}, false
	case stats, ok := <-c.events:
		if !ok {
			return models.SystemStats{}, false
		}
		select {
		case <-c.done:
			return models.SystemStats{}, false
		default:
		}
		return stats, true
	}
}

// Close tears the subscription down. It is safe to call more than once and
// from any goroutine. Next reports no further samples after it returns.
func (c *Channel) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline())
		_ = c.conn.Close()
	})
}

// Done is closed once Close has been called.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func (c *Channel) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Warn("telemetry stream dropped", "error", err)
				} else {
					c.logger.Info("telemetry stream closed", "error", err)
				}
			}
			return
		}

		stats, ok, err := decode(data)
		if err != nil {
			c.logger.Warn("telemetry frame ignored", "error", err)
			continue
		}
		if !ok {
			continue
		}

		select {
		case <-c.done:
			return
		case c.events <- stats:
		}
	}
}

// decode parses one frame. ok is false for events other than system_stats.
func decode(data []byte) (models.SystemStats, bool, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.SystemStats{}, false, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event != EventSystemStats {
		return models.SystemStats{}, false, nil
	}
	var stats models.SystemStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return models.SystemStats{}, false, fmt.Errorf("decode %s: %w", env.Event, err)
	}
	return stats, true, nil
}

func deadline() time.Time {
	return time.Now().Add(time.Second)
}
