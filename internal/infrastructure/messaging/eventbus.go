// Package messaging implements the in-process event bus that connects the
// dashboard stores to the activity recorder and the notice surface.
package messaging

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
)

// ErrBusClosed is returned when publishing to a closed bus.
var ErrBusClosed = errors.New("messaging: event bus is closed")

// InMemoryEventBus delivers events synchronously to subscribed handlers.
// Synchronous delivery keeps activity-log ordering identical to operation
// completion order; handlers must not block.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[shared.EventType][]shared.EventHandler
	catchAll    []shared.EventHandler
	closed      bool
	logger      *slog.Logger
}

// NewInMemoryEventBus creates a new bus.
func NewInMemoryEventBus(logger *slog.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventBus{
		subscribers: make(map[shared.EventType][]shared.EventHandler),
		logger:      logger,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for every event type.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.catchAll = append(b.catchAll, handler)
	return nil
}

// Publish delivers the event to all matching handlers in subscription order.
// A failing handler is logged and does not stop delivery to the others.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("messaging: event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]shared.EventHandler, 0,
		len(b.subscribers[event.EventType()])+len(b.catchAll))
	handlers = append(handlers, b.subscribers[event.EventType()]...)
	handlers = append(handlers, b.catchAll...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Error("event handler failed",
				"event", string(event.EventType()),
				"session", event.SessionID(),
				"error", err,
			)
		}
	}

	return nil
}

// Close marks the bus closed; further publishes and subscribes fail.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subscribers = make(map[shared.EventType][]shared.EventHandler)
	b.catchAll = nil
	return nil
}
