package mqtt

import (
	"log/slog"
	"time"

	"github.com/smazurov/strobed/internal/events"
)

// Event names used on the events topic.
const (
	EventEffectStarted   = "EFFECT_STARTED"
	EventEffectCompleted = "EFFECT_COMPLETED"
	EventQueueEmpty      = "QUEUE_EMPTY"
	EventError           = "ERROR"
)

// Bridge forwards bus events to an MQTT publisher. Publish failures are
// logged and dropped; the broker being down must never affect the engine.
type Bridge struct {
	publisher Publisher
	logger    *slog.Logger
	unsubs    []func()
}

// NewBridge wires the event bus to the publisher.
func NewBridge(publisher Publisher, bus *events.Bus, logger *slog.Logger) *Bridge {
	b := &Bridge{
		publisher: publisher,
		logger:    logger,
	}

	b.unsubs = append(b.unsubs,
		bus.Subscribe(func(ev events.TorchStateEvent) {
			b.send("torch", b.publisher.PublishTorch(TorchMessage{
				Timestamp: parseTimestamp(ev.Timestamp),
				On:        ev.On,
			}))
		}),
		bus.Subscribe(func(ev events.StateChangedEvent) {
			b.send("state", b.publisher.PublishState(StateMessage{
				Timestamp: parseTimestamp(ev.Timestamp),
				State:     ev.State,
			}))
		}),
		bus.Subscribe(func(ev events.EffectStartedEvent) {
			b.send("event", b.publisher.PublishEvent(EventMessage{
				Timestamp: parseTimestamp(ev.Timestamp),
				Event:     EventEffectStarted,
				EffectID:  ev.EffectID,
				Kind:      ev.Kind,
			}))
		}),
		bus.Subscribe(func(ev events.EffectCompletedEvent) {
			b.send("event", b.publisher.PublishEvent(EventMessage{
				Timestamp: parseTimestamp(ev.Timestamp),
				Event:     EventEffectCompleted,
				EffectID:  ev.EffectID,
			}))
		}),
		bus.Subscribe(func(ev events.QueueEmptyEvent) {
			b.send("event", b.publisher.PublishEvent(EventMessage{
				Timestamp: parseTimestamp(ev.Timestamp),
				Event:     EventQueueEmpty,
			}))
		}),
		bus.Subscribe(func(ev events.EngineErrorEvent) {
			b.send("event", b.publisher.PublishEvent(EventMessage{
				Timestamp: parseTimestamp(ev.Timestamp),
				Event:     EventError,
				Message:   ev.Message,
			}))
		}),
	)

	return b
}

func (b *Bridge) send(what string, err error) {
	if err != nil {
		b.logger.Warn("Failed to publish to MQTT", "what", what, "error", err)
	}
}

// Close detaches from the bus and disconnects the publisher.
func (b *Bridge) Close() error {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
	return b.publisher.Close()
}

func parseTimestamp(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts
	}
	return time.Now()
}
