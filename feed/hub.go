// Package feed delivers payload-free change notifications for named
// collections. Consumers refetch on every event; no delta content is carried.
package feed

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier publishes a change event for a collection.
type Notifier interface {
	Notify(collection string)
}

// Hub fans change events out to in-process subscribers. At least one
// callback fires for every published event; callbacks run outside the hub
// lock and may arrive concurrently with the subscriber's own fetches.
type Hub struct {
	logger zerolog.Logger

	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewHub() *Hub {
	return &Hub{
		logger: log.With().Str("component", "feedHub").Logger(),
		subs:   make(map[string]map[int]func()),
	}
}

// Subscribe registers onChange for the named collection and returns an
// unsubscribe handle. Unsubscribe is idempotent; calling it more than once
// is harmless.
func (h *Hub) Subscribe(collection string, onChange func()) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++

	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]func())
	}
	h.subs[collection][id] = onChange

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[collection], id)
	}
}

// Notify invokes every subscriber registered for the collection. A
// panicking callback is logged and does not tear down the subscription or
// block other subscribers.
func (h *Hub) Notify(collection string) {
	h.mu.Lock()
	callbacks := make([]func(), 0, len(h.subs[collection]))
	for _, cb := range h.subs[collection] {
		callbacks = append(callbacks, cb)
	}
	h.mu.Unlock()

	for _, cb := range callbacks {
		h.invoke(collection, cb)
	}
}

func (h *Hub) invoke(collection string, cb func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Str("collection", collection).
				Interface("panic", r).
				Msg("change feed callback panicked")
		}
	}()
	cb()
}
