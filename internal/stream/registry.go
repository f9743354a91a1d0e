package stream

import (
	"log/slog"
	"sync"
)

// PublishFunc delivers one encoded status event to a subscriber's
// transport. A non-nil error means the transport is broken.
type PublishFunc func(payload []byte) error

type entry struct {
	token uint64
	fn    PublishFunc
}

// Registry maps an order id to its single live subscriber. At most one
// subscriber exists per order; a newer registration replaces the old
// one (last-writer-wins, no fan-out). The registry owns no orders and
// buffers nothing: it is purely a lookup for best-effort delivery.
type Registry struct {
	mu      sync.Mutex
	next    uint64
	entries map[string]entry
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register installs or replaces the subscriber for orderID and returns
// a token identifying this registration. The token lets a connection
// tear itself down without evicting a newer subscriber that has
// already replaced it.
func (r *Registry) Register(orderID string, fn PublishFunc) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.entries[orderID] = entry{token: r.next, fn: fn}
	return r.next
}

// Unregister removes the entry for orderID regardless of who owns it.
// Removing an absent entry is a no-op.
func (r *Registry) Unregister(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, orderID)
}

// Release removes the entry for orderID only if it still belongs to
// the given registration token. Stale releases are no-ops.
func (r *Registry) Release(orderID string, token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[orderID]; ok && e.token == token {
		delete(r.entries, orderID)
	}
}

// Publish delivers payload to the order's subscriber, if any. Delivery
// is at-most-once and non-durable: no subscriber means the event is
// dropped, and a write error evicts the broken entry instead of
// propagating. Pipeline progress must never depend on a subscriber
// being present.
func (r *Registry) Publish(orderID string, payload []byte) {
	r.mu.Lock()
	e, ok := r.entries[orderID]
	r.mu.Unlock()
	if !ok {
		return
	}

	if err := e.fn(payload); err != nil {
		slog.Warn("dropping subscriber after write error",
			slog.String("order_id", orderID),
			slog.Any("error", err))
		r.Release(orderID, e.token)
	}
}

// Len reports the number of live entries (for monitoring).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
