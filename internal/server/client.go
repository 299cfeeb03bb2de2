package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

var ErrClientClosed = errors.New("client connection closed")

const writeWait = 10 * time.Second

// Client is one subscriber on the event socket.
type Client struct {
	ConnID string

	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{ConnID: uuid.NewString(), conn: conn}
}

// Send writes one frame. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

// SendEvent sends a named event with payload.
func (c *Client) SendEvent(event string, payload any, seq int64) error {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// Close closes the connection. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Hub fans events out to every connected client. Sequence numbers are
// assigned by the hub and increase across all clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	seq     atomic.Int64
	log     *logging.Logger
}

// NewHub creates a hub with no clients.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{clients: make(map[string]*Client), log: log}
}

// Add registers a connected client.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c.ConnID] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info().Str("connId", c.ConnID).Int("clients", n).Msg("client connected")
}

// Remove unregisters a client. Unknown ids are ignored.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	_, ok := h.clients[connID]
	delete(h.clients, connID)
	h.mu.Unlock()
	if ok {
		h.log.Info().Str("connId", connID).Msg("client disconnected")
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends an event to every client under the next sequence number.
// Clients that cannot be written to are closed and dropped.
func (h *Hub) Publish(event string, payload any) int64 {
	seq := h.seq.Add(1)
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("encoding event")
		return seq
	}

	h.mu.RLock()
	var failed []*Client
	for _, c := range h.clients {
		if err := c.Send(f); err != nil {
			h.log.Warn().Err(err).Str("connId", c.ConnID).Msg("dropping client")
			failed = append(failed, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range failed {
		c.Close()
		h.Remove(c.ConnID)
	}
	return seq
}

// CloseAll closes and forgets every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}
