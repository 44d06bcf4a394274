// Package events carries domain events between modules without coupling a
// publisher to its listeners. It lives in the platform layer and knows
// nothing about leads, stages, or rotation.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event the bus can carry.
type Event interface {
	// EventName identifies the event type for subscription matching.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp half of the Event contract. Concrete
// events embed it and add their own EventName.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribed handlers.
type Bus interface {
	// Publish fans the event out to its handlers without waiting on them.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and blocks until every handler ran.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the named event type. The name must
	// match what the event's EventName returns.
	Subscribe(eventName string, handler Handler)
}
