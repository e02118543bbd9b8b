package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pairpad/backend/internal/shared/id"
)

// sendBuffer is the per-client outbound queue depth. A client that falls
// this far behind is dropped instead of stalling the group.
const sendBuffer = 256

// Client is one live WebSocket connection.
type Client struct {
	ID   id.ConnID
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient wraps a WebSocket connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   id.NewConnID(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Send queues data for delivery. If the buffer is full the client is
// closed; delivery is best-effort, at-most-once.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.closeLocked()
	}
}

// SendMessage marshals and queues a message.
func (c *Client) SendMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.Send(data)
	return nil
}

// Close closes the outbound queue. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send queue onto the wire. One goroutine per
// client; the only writer to the connection.
func (c *Client) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// Hub owns group membership: which connections belong to which session.
// Membership is removed deterministically on disconnect.
type Hub struct {
	mu       sync.RWMutex
	groups   map[string]map[*Client]bool
	sessions map[*Client]string
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		groups:   make(map[string]map[*Client]bool),
		sessions: make(map[*Client]string),
	}
}

// Join adds the client to the named group. Idempotent; joining a second
// session moves the connection, since the protocol uses one session per
// connection.
func (h *Hub) Join(client *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.sessions[client]; ok {
		if prev == sessionID {
			return
		}
		h.removeLocked(client, prev)
	}

	group, ok := h.groups[sessionID]
	if !ok {
		group = make(map[*Client]bool)
		h.groups[sessionID] = group
	}
	group[client] = true
	h.sessions[client] = sessionID
}

// Leave removes the client from its group. Safe to call for a client
// that never joined. No event is emitted to peers.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionID, ok := h.sessions[client]; ok {
		h.removeLocked(client, sessionID)
	}
}

func (h *Hub) removeLocked(client *Client, sessionID string) {
	delete(h.sessions, client)
	if group, ok := h.groups[sessionID]; ok {
		delete(group, client)
		if len(group) == 0 {
			delete(h.groups, sessionID)
		}
	}
}

// EmitToOthers queues msg to every member of the group except sender.
func (h *Hub) EmitToOthers(sessionID string, sender *Client, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.groups[sessionID] {
		if client == sender {
			continue
		}
		client.Send(data)
	}
	return nil
}

// GroupCount returns the number of groups with at least one member.
func (h *Hub) GroupCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups)
}

// MemberCount returns the number of members in one group.
func (h *Hub) MemberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[sessionID])
}
