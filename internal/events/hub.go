// Package events fans governance activity out to dashboard clients over
// WebSocket.
package events

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard is served from the same process.
		return true
	},
}

// Config controls which event classes the hub forwards.
type Config struct {
	BroadcastDecisions bool
	BroadcastSystem    bool
}

// Hub maintains the set of connected clients and broadcasts events to
// them. Events are dropped, never queued unboundedly, when a client or
// the hub itself cannot keep up.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	config     Config
	logger     *zap.Logger
}

// NewHub creates a hub; call Run on its own goroutine before use.
func NewHub(cfg Config, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		config:     cfg,
		logger:     logger,
	}
}

// Run owns the client set; all mutation happens on this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.logger.Info("dashboard client connected",
				zap.String("client_id", c.id),
				zap.Int("active", len(h.clients)),
			)
			h.fanOut(Event{
				Type:      EventTypeConnection,
				Timestamp: time.Now(),
				Data:      ConnectionEvent{Action: "connected", ClientID: c.id},
			})

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Info("dashboard client disconnected",
					zap.String("client_id", c.id),
					zap.Int("active", len(h.clients)),
				)
			}

		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

func (h *Hub) fanOut(event Event) {
	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			// Slow consumer; drop it rather than block the hub.
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Broadcast enqueues an event for all clients if its class is enabled.
func (h *Hub) Broadcast(event Event) {
	switch event.Type {
	case EventTypeDecision:
		if !h.config.BroadcastDecisions {
			return
		}
	case EventTypeSystem:
		if !h.config.BroadcastSystem {
			return
		}
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event channel full, dropping event",
			zap.String("event_type", string(event.Type)),
		)
	}
}

// ServeWS upgrades an HTTP request to a WebSocket client connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   "ws_" + uuid.NewString(),
		conn: conn,
		send: make(chan Event, 256),
	}

	h.register <- c

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only send pings; discard anything else.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket read error",
					zap.String("client_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
	}
}
