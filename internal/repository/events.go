package repository

// events.go implements the change-notification channel: every successful
// mutation emits one event to all subscribers. Listeners run after the
// write has committed and persisted, outside the repository lock, and their
// return is never awaited as part of the mutation.

import (
	"sort"

	"github.com/contractreg/contractreg/internal/contract"
)

// EventType names the mutation that produced an event.
type EventType string

const (
	EventCreated      EventType = "created"
	EventUpdated      EventType = "updated"
	EventDeleted      EventType = "deleted"
	EventBulkImported EventType = "bulk_imported"
)

// Event carries the mutation type and the affected records. Deleted events
// carry the record as it was before removal.
type Event struct {
	Type    EventType           `json:"type"`
	Records []contract.Contract `json:"records"`
}

// Listener receives repository change events.
type Listener func(Event)

// Subscribe registers a listener and returns its unsubscribe function.
// Listeners are invoked in subscription order after each successful
// mutation; a listener must not call back into mutating repository methods.
func (r *Repository) Subscribe(fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextListenerID
	r.nextListenerID++
	r.listeners[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// notify delivers an event to a snapshot of the current listeners. It must
// be called without holding the repository lock.
func (r *Repository) notify(ev Event) {
	r.mu.RLock()
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.listeners[id])
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
