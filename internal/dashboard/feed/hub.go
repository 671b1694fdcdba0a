// Package feed is the render boundary: a WebSocket hub broadcasting
// change events to connected renderers, plus read-only HTTP state
// endpoints. Renderers report their active view back over the socket.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const clientSendBuffer = 16

// Hub tracks connected renderers and fans events out to them. A client
// that cannot keep up has events dropped rather than stalling the rest.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader
	onView   func(view string)

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. onView is invoked with every view selection a
// renderer sends; it may be nil.
func NewHub(logger *zap.Logger, onView func(view string)) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		onView:  onView,
		clients: make(map[*client]struct{}),
	}
}

// Broadcast sends the event to every connected renderer.
func (h *Hub) Broadcast(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("failed to marshal feed event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Debug("dropping event for slow feed client")
		}
	}
}

// ServeWS upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("feed client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var vm viewMessage
		if err := json.Unmarshal(msg, &vm); err != nil || vm.View == "" {
			continue // ignore anything that isn't a view selection
		}
		if h.onView != nil {
			h.onView(vm.View)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
	h.mu.Unlock()
}
