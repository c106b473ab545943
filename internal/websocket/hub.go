// internal/websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub maintains the set of active dashboard clients and broadcasts reading
// and alert envelopes to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.logger.Debug("websocket client registered",
				zap.String("remote", client.Conn.RemoteAddr().String()))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Debug("websocket client unregistered",
					zap.String("remote", client.Conn.RemoteAddr().String()))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Client blocked or gone; drop it.
					h.logger.Warn("websocket client send buffer full, removing",
						zap.String("remote", client.Conn.RemoteAddr().String()))
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// RegisterClient safely registers a new client to the hub.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// BroadcastReading sends a reading envelope to all clients.
func (h *Hub) BroadcastReading(reading interface{}) {
	h.broadcastEnvelope("reading", reading)
}

// BroadcastAlert sends an alert envelope to all clients.
func (h *Hub) BroadcastAlert(alert interface{}) {
	h.broadcastEnvelope("alert", alert)
}

func (h *Hub) broadcastEnvelope(kind string, payload interface{}) {
	messageBytes, err := json.Marshal(map[string]interface{}{"type": kind, "payload": payload})
	if err != nil {
		h.logger.Error("marshalling broadcast envelope", zap.String("type", kind), zap.Error(err))
		return
	}
	h.broadcast <- messageBytes
}
