// Package stream serves the long-lived subscription-update watchers.
// Each websocket connection gets its own change bus subscription plus a
// filter re-evaluated per event; passing events become a stateless
// {"has_updates":true} signal and the client re-pulls via the resolve
// endpoint.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/bus"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Cluster agents connect from anywhere
	},
}

// Hub tracks connected watchers. Unlike a broadcast hub, delivery is
// per-client: each client consumes the shared bus through its own filter.
type Hub struct {
	bus    bus.Bus
	gate   *auth.Gate
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	watcher bus.Watcher
	filter  bus.Filter
	send    chan []byte
}

func NewHub(b bus.Bus, gate *auth.Gate, logger *slog.Logger) *Hub {
	return &Hub{
		bus:     b,
		gate:    gate,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// HandleSubscriptionUpdates upgrades the connection and starts streaming
// change signals for the watched organization. A missing or wrong org key
// does not close the connection; it just suppresses delivery, so callers
// cannot probe key validity through connection behavior.
func (h *Hub) HandleSubscriptionUpdates(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	orgKey := r.Header.Get("X-Org-Key")
	if orgKey == "" {
		orgKey = r.URL.Query().Get("orgKey")
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	watcher, err := h.bus.Subscribe(r.Context())
	if err != nil {
		h.logger.Error("bus subscribe failed", "org_id", orgID, "error", err)
		conn.Close()
		return
	}

	c := &client{
		hub:     h,
		conn:    conn,
		watcher: watcher,
		filter:  bus.NewOrgFilter(h.gate, orgID, orgKey, h.logger),
		send:    make(chan []byte, 16),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("watcher connected", "org_id", orgID, "total_clients", h.ClientCount())

	go c.filterPump()
	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected watchers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	// Closing the watcher ends filterPump, which closes c.send as the
	// sole sender; writePump then sees the closed channel and exits.
	c.watcher.Close()
	h.logger.Debug("watcher disconnected", "total_clients", h.ClientCount())
}

// filterPump consumes the bus subscription and forwards only the events
// passing the per-connection filter, already encoded as signal payloads.
func (c *client) filterPump() {
	defer close(c.send)

	// The request context ends when the handler returns; filters need a
	// live context for their store lookup.
	ctx := context.Background()

	for ev := range c.watcher.Events() {
		if !c.filter(ctx, ev) {
			continue
		}
		payload, err := json.Marshal(bus.Signal{HasUpdates: true})
		if err != nil {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer; drop the signal. The client re-pulls on the
			// next one.
		}
	}
}

// readPump reads messages from the connection (handles pings/disconnects).
func (c *client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes signals and keepalive pings to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
