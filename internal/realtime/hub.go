package realtime

import (
	"encoding/json"
	"sync"
)

// Client represents a single websocket client connection.
// The network conn itself is managed by the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is pushed to admin dashboards when content changes.
type Event struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
	ID       string `json:"id"`
	Actor    string `json:"actor"`
	Version  int    `json:"version"`
}

// Hub tracks connected admin clients by admin ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = NewHub()
	})
	return hubInstance
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Client]struct{})}
}

// Register adds a client under an admin ID.
func (h *Hub) Register(adminID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[adminID]; !ok {
		h.clients[adminID] = make(map[Client]struct{})
	}
	h.clients[adminID][client] = struct{}{}
}

// Unregister removes a client; an admin with no clients left is dropped.
func (h *Hub) Unregister(adminID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[adminID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, adminID)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

// Connected is the first message an admin feed receives.
func Connected(adminID string) []byte {
	message, _ := json.Marshal(Event{Type: "connected", Resource: "feed", Actor: adminID, Version: 1})
	return message
}

// Publish sends evt to every connected client and returns how many accepted it.
// Sends happen outside the hub lock so a slow client cannot stall registration.
// Clients whose write fails are cleaned up by their handler.
func (h *Hub) Publish(evt Event) int {
	if evt.Version == 0 {
		evt.Version = 1
	}
	message, err := json.Marshal(evt)
	if err != nil {
		return 0
	}

	sent := 0
	for _, c := range h.snapshot() {
		if c.Send(message) {
			sent++
		}
	}
	return sent
}

func (h *Hub) snapshot() []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Client, 0, len(h.clients))
	for _, clients := range h.clients {
		for c := range clients {
			out = append(out, c)
		}
	}
	return out
}
