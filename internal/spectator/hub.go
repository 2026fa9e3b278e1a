package spectator

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/marble-maze/internal/logger"
)

// sendBuffer is how many messages a slow client may lag behind before
// snapshots are dropped for it.
const sendBuffer = 16

type client struct {
	id   uuid.UUID
	send chan []byte
}

// Hub fans snapshots out to connected clients. Publish never blocks the
// caller, so it is safe to call from the frame loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	last    *Snapshot
	// lastData is last, encoded.
	lastData []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*client)}
}

// register adds a client whose first queued message is its hello, followed
// by the latest snapshot if one was published. Both are queued under the
// lock, so no Publish can slip in between and reorder them.
func (h *Hub) register() *client {
	c := &client{id: uuid.New(), send: make(chan []byte, sendBuffer)}
	hello, _ := json.Marshal(Envelope{Type: MessageHello, ClientID: c.id.String()})

	h.mu.Lock()
	c.send <- hello
	if h.lastData != nil {
		c.send <- h.lastData
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	logger.Info("spectator connected", zap.String("client", c.id.String()))
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	logger.Info("spectator disconnected", zap.String("client", c.id.String()))
}

// Publish sends s to every client.
func (h *Hub) Publish(s Snapshot) {
	data, err := json.Marshal(Envelope{Type: MessageSnapshot, Snapshot: &s})
	if err != nil {
		logger.Warn("snapshot encode failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last = &s
	h.lastData = data
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			logger.Debug("spectator lagging, snapshot dropped", zap.String("client", c.id.String()))
		}
	}
	h.mu.Unlock()
}

// Last returns the most recent snapshot, if any.
func (h *Hub) Last() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return Snapshot{}, false
	}
	return *h.last, true
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
