// Package sse fans computed-cost change events out to connected dashboard
// clients over Server-Sent Events.
package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event represents a Server-Sent Event.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client. A client with no store
// subscriptions receives only unfiltered broadcasts.
type Client struct {
	ID         string
	EmployeeID string
	Events     chan Event

	stores map[string]struct{}
}

// Hub manages all SSE client connections and their store subscriptions.
// Delivery is best-effort: a client whose buffer is full simply misses the
// event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates a hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a new client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client.stores == nil {
		client.stores = make(map[string]struct{})
	}
	h.clients[client.ID] = client
	h.logger.Info("sse client registered",
		zap.String("client_id", client.ID),
		zap.Int("total", len(h.clients)),
	)
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Info("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)),
		)
	}
}

// Subscribe opts a client into events for one store.
func (h *Hub) Subscribe(clientID, storeID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok {
		return false
	}
	client.stores[storeID] = struct{}{}
	return true
}

// Unsubscribe opts a client out of events for one store.
func (h *Hub) Unsubscribe(clientID, storeID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok {
		return false
	}
	delete(client.stores, storeID)
	return true
}

// Broadcast sends an event to all clients, or only to subscribers of
// storeFilter when it is non-empty. Sends never block: a full client buffer
// drops the event for that client only.
func (h *Hub) Broadcast(event Event, storeFilter string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if storeFilter != "" {
			if _, subscribed := client.stores[storeFilter]; !subscribed {
				continue
			}
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("event", event.EventType),
			)
		}
	}
}

// Publish marshals a payload and broadcasts it, satisfying the update
// pipeline's event sink.
func (h *Hub) Publish(eventType string, data map[string]interface{}, storeID string) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal sse payload",
			zap.String("event", eventType), zap.Error(err))
		return
	}
	h.Broadcast(Event{EventType: eventType, Data: string(payload)}, storeID)
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
