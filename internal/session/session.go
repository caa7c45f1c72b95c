package session

import (
	"encoding/json"
	"sync"
)

// Message is the JSON envelope for websocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps payload in a message envelope.
func Encode(msgType string, payload any) []byte {
	p, _ := json.Marshal(payload)
	msg, _ := json.Marshal(Message{Type: msgType, Payload: p})
	return msg
}

// Conn is one live connection to a game.
type Conn struct {
	PlayerID  string
	Spectator bool
	Send      chan []byte // outbound messages

	mu     sync.Mutex
	closed bool
}

// Deliver queues msg for the connection, dropping it if the buffer is full
// or the connection has left.
func (c *Conn) Deliver(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- msg:
	default:
		// drop message if buffer full
	}
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub holds the connections watching one game.
type Hub struct {
	mu     sync.RWMutex
	GameID string
	conns  map[*Conn]struct{}
}

func newHub(gameID string) *Hub {
	return &Hub{GameID: gameID, conns: make(map[*Conn]struct{})}
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

// remove drops c and closes its channel. It reports whether c was present.
func (h *Hub) remove(c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return false
	}
	c.close()
	delete(h.conns, c)
	return true
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Connected reports whether playerID has at least one live seat connection.
func (h *Hub) Connected(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		if !c.Spectator && c.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) each(fn func(c *Conn)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		fn(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.close()
		delete(h.conns, c)
	}
}
