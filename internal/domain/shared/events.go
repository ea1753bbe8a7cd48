package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something user-visible that
// happened inside a dashboard session; the activity recorder and the notice
// surface subscribe to them.
const (
	// Session events
	EventSessionStarted EventType = "session.started"
	EventSessionEnded   EventType = "session.ended"

	// Learning events
	EventPathAdded     EventType = "learning.path_added"
	EventPathAdvanced  EventType = "learning.path_advanced"
	EventPathCompleted EventType = "learning.path_completed"

	// Job events
	EventJobApplied EventType = "jobs.applied"

	// Assistant events
	EventAssistantAsked   EventType = "assistant.asked"
	EventAssistantOffline EventType = "assistant.offline"

	// Feed refresh events
	EventSnapshotRefreshed EventType = "opportunities.refreshed"
	EventRefreshFailed     EventType = "feed.refresh_failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// SessionID returns the ID of the session that produced this event.
	SessionID() string

	// Payload returns the event data.
	Payload() map[string]any
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Session   string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventType implements Event.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt implements Event.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// SessionID implements Event.
func (e BaseEvent) SessionID() string { return e.Session }

// Payload implements Event.
func (e BaseEvent) Payload() map[string]any { return e.Data }

// NewEvent creates a new event with the given type, session and payload.
func NewEvent(eventType EventType, sessionID string, data map[string]any) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Session:   sessionID,
		Data:      data,
	}
}

// EventHandler processes a published event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventBus is a publisher that also supports subscriptions.
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler EventHandler) error

	// Close releases bus resources.
	Close() error
}

// NopPublisher discards all events. Useful as a default and in tests.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
