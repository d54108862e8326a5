// Package notify surfaces a live count of unassigned intake clients to the
// back office. It is fed by an in-process change feed: the engine publishes
// client events on the Bus, a PendingMonitor consumes them and keeps an
// atomically readable count, reconciling with a full recount since the
// feed carries no delivery guarantee.
package notify

import (
	"sync"

	"brokerage-app-server/internal/models"
)

// EventType classifies a client change event.
type EventType string

const (
	// EventPendingCreated fires when public intake creates a client.
	EventPendingCreated EventType = "pending_created"
	// EventPendingResolved fires when a pending client leaves intake
	// (broker assigned, or the client was deleted).
	EventPendingResolved EventType = "pending_resolved"
)

// ClientEvent is a change notification for a client row.
type ClientEvent struct {
	Type   EventType
	Client models.Client
}

// Handler receives client events.
type Handler func(ClientEvent)

// Bus is a minimal in-process change feed with callback registration.
// Publish never blocks on slow handlers beyond the handler call itself;
// handlers that need to do real work should hand off to their own
// goroutine, as PendingMonitor does.
type Bus struct {
	mu   sync.RWMutex
	subs []Handler
}

// Subscribe registers h for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, h)
}

// Publish delivers ev to every registered handler.
func (b *Bus) Publish(ev ClientEvent) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, h := range subs {
		h(ev)
	}
}
