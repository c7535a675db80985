package streaming

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestClientSubscriptionFilters(t *testing.T) {
	c := &Client{subscriptions: make(map[EventType]bool)}
	for _, et := range allEventTypes() {
		c.subscriptions[et] = true
	}

	if !c.isSubscribed(EventTypePrediction) {
		t.Fatal("default subscription should include predictions")
	}

	c.handleMessage([]byte(`{"type":"unsubscribe","events":["prediction","edge"]}`))
	if c.isSubscribed(EventTypePrediction) || c.isSubscribed(EventTypeEdge) {
		t.Error("unsubscribe did not remove event types")
	}
	if !c.isSubscribed(EventTypeSlate) {
		t.Error("unsubscribe removed an unrelated event type")
	}

	c.handleMessage([]byte(`{"type":"subscribe","events":["edge"]}`))
	if !c.isSubscribed(EventTypeEdge) {
		t.Error("subscribe did not restore the event type")
	}

	// Malformed messages are ignored.
	c.handleMessage([]byte(`{not json`))
	if !c.isSubscribed(EventTypeEdge) {
		t.Error("malformed message changed subscriptions")
	}
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub(zerolog.Nop())

	// Nobody is draining the channel; filling past capacity must not block.
	for i := 0; i < 300; i++ {
		h.BroadcastStatus(map[string]int{"i": i})
	}

	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}
}
