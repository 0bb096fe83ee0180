package events

import (
	"fmt"

	"github.com/kelindar/event"

	"github.com/smazurov/strobed/internal/logging"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(EffectStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Use type switch to call the generic Publish with the correct type
	switch e := ev.(type) {
	case EffectStartedEvent:
		event.Publish(b.dispatcher, e)
	case EffectCompletedEvent:
		event.Publish(b.dispatcher, e)
	case QueueEmptyEvent:
		event.Publish(b.dispatcher, e)
	case EngineErrorEvent:
		event.Publish(b.dispatcher, e)
	case StateChangedEvent:
		event.Publish(b.dispatcher, e)
	case TorchStateEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	default:
		// A new event type that never got a dispatch case would otherwise
		// vanish without a trace.
		logging.GetLogger("events").Warn("Dropping event with no dispatch case", "type", ev.Type())
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives (type inference)
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e EffectStartedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	// The kelindar/event library uses the handler's parameter type to route
	// events, so each known handler signature is dispatched explicitly.
	switch h := handler.(type) {
	case func(EffectStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(EffectCompletedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(QueueEmptyEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(EngineErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TorchStateEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		logging.GetLogger("events").Warn("Ignoring subscriber with unrecognized handler signature", "handler", fmt.Sprintf("%T", handler))
		return func() {}
	}
}
