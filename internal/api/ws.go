package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hearthstead/internal/engine"
)

const (
	maxWSClients  = 8
	clientBacklog = 64
	writeTimeout  = 5 * time.Second
	pingPeriod    = 15 * time.Second
)

// Hub fans simulation events out to websocket clients. The daemon loop
// pushes each tick's drained events with Broadcast; slow clients are dropped
// rather than allowed to stall the loop.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Broadcast queues a batch of events to every connected client.
func (h *Hub) Broadcast(events []engine.Event) {
	if len(events) == 0 {
		return
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// Backlog full: the client can't keep up.
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Handler returns the /ws upgrade handler.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		full := len(h.clients) >= maxWSClients
		h.mu.Unlock()
		if full {
			http.Error(w, "too many stream clients", http.StatusServiceUnavailable)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		c := &client{conn: conn, send: make(chan []byte, clientBacklog)}
		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()
		slog.Info("ws client connected", "remote", r.RemoteAddr)

		go h.writeLoop(c)
		h.readLoop(c)
	}
}

// writeLoop pushes queued events and pings until the client goes away.
func (h *Hub) writeLoop(c *client) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "slow consumer"),
					time.Now().Add(time.Second))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; the stream is one-way. Returning
// unregisters the client.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
