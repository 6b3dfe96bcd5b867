package kds

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e := <-sub.Events():
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubScopesEventsByTenant(t *testing.T) {
	hub := NewHub()
	kitchenA := hub.Subscribe(1)
	posA := hub.Subscribe(1)
	kitchenB := hub.Subscribe(2)
	defer kitchenA.Close()
	defer posA.Close()
	defer kitchenB.Close()

	hub.Publish(NewOrder(1))

	assert.Equal(t, NewOrder(1), receive(t, kitchenA))
	assert.Equal(t, NewOrder(1), receive(t, posA))
	assertNoEvent(t, kitchenB)
}

func TestHubCloseUnsubscribes(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(7)
	assert.Equal(t, 1, hub.SubscriberCount(7))

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, hub.SubscriberCount(7))
	_, open := <-sub.Events()
	assert.False(t, open)

	// publishing to a tenant nobody listens to is a no-op
	hub.Publish(OrderUpdate(7))
}

func TestHubPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe(3)
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(OrderUpdate(3))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, slow.Events(), subscriberBuffer)
}

type recordingRelay struct {
	mu     sync.Mutex
	events []Event
	seen   chan struct{}
}

func (r *recordingRelay) Forward(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.seen <- struct{}{}
}

func TestHubForwardsToRelay(t *testing.T) {
	hub := NewHub()
	relay := &recordingRelay{seen: make(chan struct{}, 1)}
	hub.SetRelay(relay)

	hub.Publish(NewOrder(5))

	select {
	case <-relay.seen:
	case <-time.After(time.Second):
		t.Fatal("relay not called")
	}
	relay.mu.Lock()
	defer relay.mu.Unlock()
	require.Len(t, relay.events, 1)
	assert.Equal(t, EventNewOrder, relay.events[0].Kind)
}

func TestHubDeliverSkipsRelay(t *testing.T) {
	hub := NewHub()
	relay := &recordingRelay{seen: make(chan struct{}, 1)}
	hub.SetRelay(relay)
	sub := hub.Subscribe(9)
	defer sub.Close()

	hub.Deliver(OrderUpdate(9))

	assert.Equal(t, OrderUpdate(9), receive(t, sub))
	select {
	case <-relay.seen:
		t.Fatal("deliver must not re-forward bridged events")
	case <-time.After(50 * time.Millisecond):
	}
}
