package handler

import (
	"fmt"
	"time"

	"github.com/TranMinhPhuc220420/plt-retail-store-sub000/internal/sse"
	"github.com/gin-gonic/gin"
)

// SSEHandler serves the event stream and subscription management.
type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream GET /sse/events?token=xxx
//
// The connection stays open until the client goes away. Cost update events
// for stores the client subscribed to are pushed as they happen.
func (h *SSEHandler) Stream(c *gin.Context) {
	userID := GetUserID(c)
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())

	client := &sse.Client{
		ID:         clientID,
		EmployeeID: userID,
		Events:     make(chan sse.Event, 64),
	}

	h.hub.Register(client)

	// The token's store becomes the initial subscription.
	if storeID := GetStoreID(c); storeID != "" {
		h.hub.Subscribe(clientID, storeID)
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {\"client_id\":\"" + clientID + "\"}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", event.EventType, event.Data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

// Subscribe POST /sse/subscriptions/:clientId/:storeId
func (h *SSEHandler) Subscribe(c *gin.Context) {
	if !h.hub.Subscribe(c.Param("clientId"), c.Param("storeId")) {
		NotFound(c, "client not connected")
		return
	}
	Success(c, nil)
}

// Unsubscribe DELETE /sse/subscriptions/:clientId/:storeId
func (h *SSEHandler) Unsubscribe(c *gin.Context) {
	if !h.hub.Unsubscribe(c.Param("clientId"), c.Param("storeId")) {
		NotFound(c, "client not connected")
		return
	}
	Success(c, nil)
}

// Status GET /sse/status
func (h *SSEHandler) Status(c *gin.Context) {
	Success(c, gin.H{"clients": h.hub.ClientCount()})
}
