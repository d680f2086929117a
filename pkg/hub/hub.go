package hub

import (
	"log"
	"sync"

	"pastehub/pkg/envelope"

	"github.com/gofiber/contrib/websocket"
)

// Conn is what the hub needs from a websocket connection. Satisfied by
// *websocket.Conn.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

type clientConn struct {
	conn   Conn
	userID int
	mu     sync.Mutex
}

func (cc *clientConn) send(data []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := cc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[HUB] send error user=%d: %v", cc.userID, err)
	}
}

// Hub tracks connected websocket subscribers and fans events out to all of
// them. Share viewers connect anonymously (userID 0).
type Hub struct {
	mu      sync.RWMutex
	clients map[Conn]*clientConn
}

func New() *Hub {
	return &Hub{
		clients: make(map[Conn]*clientConn),
	}
}

// HandleClientConn registers the connection and blocks reading until the
// client goes away. Inbound frames are ignored; the share channel is
// server→client only.
func (h *Hub) HandleClientConn(c Conn, userID int) {
	h.Register(c, userID)
	defer h.Unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) Register(c Conn, userID int) {
	cc := &clientConn{conn: c, userID: userID}

	h.mu.Lock()
	h.clients[c] = cc
	h.mu.Unlock()

	log.Printf("[HUB] client connected: user_id=%d total=%d", userID, h.ClientCount())
}

func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	cc, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.Close()
	log.Printf("[HUB] client disconnected: user_id=%d total=%d", cc.userID, h.ClientCount())
}

// Broadcast sends an event to ALL connected clients. Writes are serialized
// per connection; there is no global ordering across events.
func (h *Hub) Broadcast(event string, data interface{}) {
	env, err := envelope.NewEvent(event, data)
	if err != nil {
		return
	}
	raw, err := env.Marshal()
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cc := range h.clients {
		cc.send(raw)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
