// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

// Package events delivers sync lifecycle notifications to in-process
// subscribers such as UI layers and loggers.
package events

import (
	"sync"

	"github.com/vpanarin/wealthkeeper/internal/logger"
	"github.com/vpanarin/wealthkeeper/models"
)

// Handler receives a sync event. Handlers run synchronously on the emitting
// goroutine and must not block.
type Handler func(models.SyncEvent)

// Subscription identifies one registered handler for later removal.
type Subscription uint64

// Bus is a synchronous publish/subscribe hub for sync events. A panicking
// handler is logged and does not disturb the emitter or other subscribers.
type Bus struct {
	logger *logger.Logger

	mu       sync.RWMutex
	nextID   Subscription
	handlers map[models.SyncEventType]map[Subscription]Handler
}

// NewBus constructs an empty event bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		logger:   log,
		handlers: make(map[models.SyncEventType]map[Subscription]Handler),
	}
}

// On registers handler for the given event type and returns a subscription
// handle for Off.
func (b *Bus) On(t models.SyncEventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.handlers[t] == nil {
		b.handlers[t] = make(map[Subscription]Handler)
	}
	b.handlers[t][id] = handler

	return id
}

// Off removes the subscription. Removing an unknown subscription is a no-op.
func (b *Bus) Off(t models.SyncEventType, id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.handlers[t], id)
}

// Emit delivers event to every handler registered for its type, in
// unspecified order.
func (b *Bus) Emit(event models.SyncEvent) {
	b.mu.RLock()
	subs := make([]Handler, 0, len(b.handlers[event.Type]))
	for _, h := range b.handlers[event.Type] {
		subs = append(subs, h)
	}
	b.mu.RUnlock()

	for _, h := range subs {
		b.deliver(h, event)
	}
}

func (b *Bus) deliver(h Handler, event models.SyncEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("func", "Bus.deliver").
				Str("event_type", string(event.Type)).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()

	h(event)
}
