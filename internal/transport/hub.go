// Package transport forwards the scheduler's event stream verbatim to remote
// UI clients over WebSocket. The hub is a schemas.EventSink: Publish never
// blocks the scheduler, and per-client ordering matches emission order.
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/driftline/supportsim/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultWriteTimeout = 5 * time.Second
	defaultClientBuffer = 256

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub broadcasts typing events to every connected WebSocket client.
type Hub struct {
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	clientBuffer int

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub constructs a hub. Non-positive writeTimeout/clientBuffer select the
// package defaults.
func NewHub(logger *zap.Logger, writeTimeout time.Duration, clientBuffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if clientBuffer <= 0 {
		clientBuffer = defaultClientBuffer
	}
	return &Hub{
		logger:       logger,
		upgrader:     websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		writeTimeout: writeTimeout,
		clientBuffer: clientBuffer,
		clients:      make(map[*client]struct{}),
	}
}

// Publish implements schemas.EventSink. The event is encoded once and queued
// to every client; a client whose buffer is full is dropped rather than
// stalling the scheduler.
func (h *Hub) Publish(event schemas.TypingEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode typing event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow event-stream client")
			h.dropLocked(c)
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.clientBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("event-stream client connected", zap.Int("clients", total))

	go h.writePump(c)
	h.readPump(c)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// dropLocked removes a client. Caller holds h.mu.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// readPump drains the connection to detect disconnects and handle pongs.
// Clients never send application data on this stream.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the single writer for one connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
