package xld

import "context"

// EventType names a significant client event
type EventType string

const (
	EventAuthenticated    EventType = "authenticated"
	EventSessionCleared   EventType = "session_cleared"
	EventRequestFailed    EventType = "request_failed"
	EventRequestSucceeded EventType = "request_succeeded"
)

// Event describes something that happened during a call
type Event struct {
	Type       EventType
	Route      string
	StatusCode int
	Err        error
}

// Observer receives client events. Observe must not block.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(ctx context.Context, event Event)

// Observe calls f(ctx, event)
func (f ObserverFunc) Observe(ctx context.Context, event Event) {
	f(ctx, event)
}

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Event) {}
