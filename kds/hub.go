package kds

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/resto-order-core/utils"
)

// Event kinds
const (
	EventNewOrder    EventKind = "new_order"
	EventOrderUpdate EventKind = "order_update"
)

type EventKind string

// Event is an invalidation signal. It carries nothing but the tenant scope; receivers re-fetch
// order state through the read APIs.
type Event struct {
	Kind     EventKind `json:"event"`
	TenantID uint      `json:"tenant_id"`
}

func NewOrder(tenantID uint) Event {
	return Event{Kind: EventNewOrder, TenantID: tenantID}
}

func OrderUpdate(tenantID uint) Event {
	return Event{Kind: EventOrderUpdate, TenantID: tenantID}
}

// Relay forwards events to other API instances.
type Relay interface {
	Forward(Event)
}

// subscriberBuffer bounds how far a slow display may lag before events to it are dropped.
const subscriberBuffer = 32

// Hub holds the live subscribers of each tenant. Delivery is fire-and-forget with no queue or replay.
type Hub struct {
	mu      sync.RWMutex
	tenants map[uint]map[*Subscription]struct{}
	relay   Relay
}

func NewHub() *Hub {
	return &Hub{tenants: make(map[uint]map[*Subscription]struct{})}
}

// SetRelay installs the cross-instance relay. Call before serving traffic.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = r
}

type Subscription struct {
	TenantID uint
	events   chan Event
	hub      *Hub
	once     sync.Once
}

// Events is closed when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if subs, ok := s.hub.tenants[s.TenantID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.tenants, s.TenantID)
			}
		}
		s.hub.mu.Unlock()
		close(s.events)
	})
}

func (h *Hub) Subscribe(tenantID uint) *Subscription {
	sub := &Subscription{
		TenantID: tenantID,
		events:   make(chan Event, subscriberBuffer),
		hub:      h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.tenants[tenantID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.tenants[tenantID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Publish delivers to local subscribers and hands the event to the relay. It never blocks.
func (h *Hub) Publish(e Event) {
	h.Deliver(e)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		go relay.Forward(e)
	}
}

// Deliver sends to subscribers of this instance only.
func (h *Hub) Deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for sub := range h.tenants[e.TenantID] {
		select {
		case sub.events <- e:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"tenant_id": e.TenantID,
			"event":     e.Kind,
			"dropped":   dropped,
		}).Warn("kds subscriber buffer full, event dropped")
	}
}

func (h *Hub) SubscriberCount(tenantID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tenants[tenantID])
}
