package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"referralhub/pkg/logger"
)

// Publisher pushes live feed messages to the dashboards of one organization.
// Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, orgID primitive.ObjectID, msgType string, data interface{})
}

type Message struct {
	Type      string      `json:"type"`
	OrgID     string      `json:"org_id"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]bool),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.sendToRoom(orgRoom(message.OrgID), message)
		}
	}
}

// Publish queues a message for the org's room. When the queue is full the
// message is dropped rather than blocking the caller.
func (h *Hub) Publish(ctx context.Context, orgID primitive.ObjectID, msgType string, data interface{}) {
	h.deliver(Message{
		Type:      msgType,
		OrgID:     orgID.Hex(),
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	})
}

func (h *Hub) deliver(message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.WithField("type", message.Type).Warn("Live feed queue full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, orgRoom(client.OrgID.Hex()))

	h.logger.WithFields(map[string]interface{}{
		"user_id": client.UserID.Hex(),
		"org_id":  client.OrgID.Hex(),
	}).Debug("Live feed client registered")

	welcome := Message{
		Type:      "welcome",
		OrgID:     client.OrgID.Hex(),
		Timestamp: getCurrentTimestamp(),
		Data: map[string]interface{}{
			"message": "Connected successfully",
		},
	}
	h.sendToClient(client, welcome)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.removeClient(client)
}

// removeClient must be called with the mutex held.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

func (h *Hub) sendToRoom(roomID string, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	for client := range room {
		h.sendToClient(client, message)
	}
}

// sendToClient must be called with the mutex held. Slow clients are dropped.
func (h *Hub) sendToClient(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal live feed message")
		return
	}

	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.removeClient(client)
	}
}

func orgRoom(orgID string) string {
	return "org_" + orgID
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
