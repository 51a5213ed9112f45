// internal/websocket/hub.go

package websocket

import (
	"encoding/json"

	"github.com/dhananjayaaps/wifi-monitor/internal/logger"
	"github.com/dhananjayaaps/wifi-monitor/internal/models"
)

// Hub fans alert triggers out to connected dashboard clients. Clients are
// keyed by user id so a trigger only reaches the rule's owner.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	log        *logger.Logger
}

type userMessage struct {
	userID  int64
	payload []byte
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan userMessage, 64),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("websocket client connected (user %d)", client.userID)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debug("websocket client disconnected (user %d)", client.userID)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.userID != msg.userID {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastAlert pushes a fired trigger to the owning user's clients.
// Never blocks the caller: if the hub's queue is full the event is dropped
// (the trigger is already durable in alert_history).
func (h *Hub) BroadcastAlert(userID int64, trigger *models.AlertTrigger) {
	payload, err := json.Marshal(map[string]any{
		"type": "alert_triggered",
		"data": trigger,
	})
	if err != nil {
		h.log.Error("marshal alert trigger: %v", err)
		return
	}
	select {
	case h.broadcast <- userMessage{userID: userID, payload: payload}:
	default:
		h.log.Warn("websocket broadcast queue full, dropping alert event")
	}
}
