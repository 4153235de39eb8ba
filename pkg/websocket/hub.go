package websocket

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Hub tracks connected clients by user id.
type Hub struct {
	clients map[int64]map[*Client]struct{}
	mu      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	log.Infof("Client for user %d connected (%d open)", c.UserID, len(set))
}

// RemoveClient unregisters c and closes its Send channel. Removing a client
// twice is a no-op.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	log.Infof("Client for user %d disconnected", c.UserID)
}

// SendToUser queues message on every connection of userID and returns how
// many accepted it. Connections with a full buffer are skipped.
func (h *Hub) SendToUser(userID int64, message []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.Send <- message:
			delivered++
		default:
			log.Warnf("Dropping message for user %d: send buffer full", userID)
		}
	}
	return delivered
}

// Connected reports the number of open connections for userID.
func (h *Hub) Connected(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, set := range h.clients {
		for c := range set {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}
