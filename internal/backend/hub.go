package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/prabalesh/aideck/internal/models"
	"github.com/prabalesh/aideck/internal/telemetry"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
}

// Hub fans push events out to every connected subscriber. All writes happen
// on the Run goroutine.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *slog.Logger
	state      *State
}

func NewHub(logger *slog.Logger, state *State) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
		state:      state,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			h.mutex.Unlock()
			h.logger.Info("websocket client connected", "client_id", c.id)
			h.record(models.LevelInfo, fmt.Sprintf("Dashboard client %s connected", c.id))

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.conn.Close()
			}
			h.mutex.Unlock()
			h.logger.Info("websocket client disconnected", "client_id", c.id)
			h.record(models.LevelInfo, fmt.Sprintf("Dashboard client %s disconnected", c.id))

		case message := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Warn("websocket write failed", "client_id", c.id, "error", err)
					delete(h.clients, c)
					c.conn.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

// Publish wraps data in an event envelope and hands it to the Run loop. It
// returns false once the hub has stopped.
func (h *Hub) Publish(event string, data any) (bool, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", event, err)
	}
	frame, err := json.Marshal(telemetry.Envelope{Event: event, Data: raw})
	if err != nil {
		return false, fmt.Errorf("encode envelope: %w", err)
	}
	select {
	case h.broadcast <- frame:
		return true, nil
	case <-h.done:
		return false, nil
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps reading until the peer goes away.
// Inbound frames are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) record(level models.Level, msg string) {
	if h.state != nil {
		h.state.AppendLog(level, "websocket", msg)
	}
}
