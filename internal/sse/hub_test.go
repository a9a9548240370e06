package sse

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(id string, buffer int) *Client {
	return &Client{ID: id, EmployeeID: "emp-" + id, Events: make(chan Event, buffer)}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient("c1", 4)

	hub.Register(client)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	hub.Unregister("c1")
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("ClientCount after unregister = %d, want 0", got)
	}
	if _, open := <-client.Events; open {
		t.Error("Events channel should be closed after Unregister")
	}

	// unknown client is a no-op
	hub.Unregister("c1")
}

func TestSubscribeUnknownClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	if hub.Subscribe("ghost", "store-1") {
		t.Error("Subscribe for unknown client should return false")
	}
	if hub.Unsubscribe("ghost", "store-1") {
		t.Error("Unsubscribe for unknown client should return false")
	}
}

func TestBroadcastStoreFilter(t *testing.T) {
	hub := NewHub(zap.NewNop())
	subscribed := newTestClient("sub", 4)
	other := newTestClient("other", 4)
	hub.Register(subscribed)
	hub.Register(other)
	if !hub.Subscribe("sub", "store-1") {
		t.Fatal("Subscribe returned false for a registered client")
	}

	hub.Broadcast(Event{EventType: "cost_updated", Data: "{}"}, "store-1")

	select {
	case ev := <-subscribed.Events:
		if ev.EventType != "cost_updated" {
			t.Errorf("EventType = %q, want cost_updated", ev.EventType)
		}
	default:
		t.Error("subscribed client received nothing")
	}
	select {
	case ev := <-other.Events:
		t.Errorf("unsubscribed client received %+v", ev)
	default:
	}
}

func TestBroadcastUnfilteredReachesEveryone(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a := newTestClient("a", 4)
	b := newTestClient("b", 4)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(Event{EventType: "ping", Data: "{}"}, "")

	for _, client := range []*Client{a, b} {
		select {
		case <-client.Events:
		default:
			t.Errorf("client %s missed the unfiltered broadcast", client.ID)
		}
	}
}

func TestBroadcastDropsOnFullBuffer(t *testing.T) {
	hub := NewHub(zap.NewNop())
	slow := newTestClient("slow", 1)
	hub.Register(slow)

	hub.Broadcast(Event{EventType: "first", Data: "{}"}, "")
	// buffer is full now; this must not block
	hub.Broadcast(Event{EventType: "second", Data: "{}"}, "")

	ev := <-slow.Events
	if ev.EventType != "first" {
		t.Errorf("EventType = %q, want first", ev.EventType)
	}
	select {
	case ev := <-slow.Events:
		t.Errorf("dropped event was delivered: %+v", ev)
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient("c1", 4)
	hub.Register(client)
	hub.Subscribe("c1", "store-1")
	hub.Unsubscribe("c1", "store-1")

	hub.Broadcast(Event{EventType: "cost_updated", Data: "{}"}, "store-1")

	select {
	case ev := <-client.Events:
		t.Errorf("unsubscribed client received %+v", ev)
	default:
	}
}

func TestPublishMarshalsPayload(t *testing.T) {
	hub := NewHub(zap.NewNop())
	client := newTestClient("c1", 4)
	hub.Register(client)
	hub.Subscribe("c1", "store-1")

	hub.Publish("cost_updated", map[string]interface{}{
		"entity_type": "recipe",
		"entity_id":   "rec-1",
		"new_cost":    12.5,
	}, "store-1")

	ev := <-client.Events
	if ev.EventType != "cost_updated" {
		t.Fatalf("EventType = %q, want cost_updated", ev.EventType)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["entity_id"] != "rec-1" {
		t.Errorf("entity_id = %v, want rec-1", payload["entity_id"])
	}
	if payload["new_cost"] != 12.5 {
		t.Errorf("new_cost = %v, want 12.5", payload["new_cost"])
	}
}
