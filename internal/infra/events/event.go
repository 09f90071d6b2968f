package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeRefreshRequested asks every dashboard to refetch its feeds.
	TypeRefreshRequested = "RefreshRequested"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventID returns the unique identifier for this event instance.
	EventID() uuid.UUID

	// EventType returns the type name of the event (e.g., "RefreshRequested").
	EventType() string

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent provides a base implementation of the Event interface.
// Embed this struct in events to inherit common fields.
type BaseEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// EventID returns the unique identifier for this event instance.
func (e BaseEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type name of the event.
func (e BaseEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new BaseEvent of the given type.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// RefreshRequested is published after a change that makes the dashboards stale.
type RefreshRequested struct {
	BaseEvent
	Reason string `json:"reason"`
}

// NewRefreshRequested creates a RefreshRequested event.
func NewRefreshRequested(reason string) RefreshRequested {
	return RefreshRequested{
		BaseEvent: NewBaseEvent(TypeRefreshRequested),
		Reason:    reason,
	}
}
