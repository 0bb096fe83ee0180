// Package mqtt publishes engine activity to an MQTT broker, with an
// abstraction for testing. Torch and engine state are published retained so
// home-automation consumers see the current state on subscribe.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicTorch is the MQTT topic for torch state changes.
const TopicTorch = "strobed/torch"

// TopicState is the MQTT topic for engine state transitions.
const TopicState = "strobed/engine/state"

// TopicEvents is the MQTT topic for effect lifecycle and error events.
const TopicEvents = "strobed/engine/events"

// Publisher publishes engine activity to MQTT.
type Publisher interface {
	// PublishTorch sends a retained torch state message.
	// Returns error if publishing fails (must not crash the process).
	PublishTorch(msg TorchMessage) error

	// PublishState sends a retained engine state message.
	PublishState(msg StateMessage) error

	// PublishEvent sends an effect lifecycle or error message.
	PublishEvent(msg EventMessage) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// TorchMessage describes a torch state change.
type TorchMessage struct {
	Timestamp time.Time
	On        bool
}

// StateMessage describes an engine state transition.
type StateMessage struct {
	Timestamp time.Time
	State     string
}

// EventMessage describes an effect lifecycle event or an engine error.
type EventMessage struct {
	Timestamp time.Time
	Event     string // e.g. "EFFECT_STARTED", "QUEUE_EMPTY", "ERROR"
	EffectID  string
	Kind      string
	Message   string
}

// TorchPayload is the wire shape for torch messages.
type TorchPayload struct {
	Torch TorchPayloadInner `json:"torch"`
}

// TorchPayloadInner contains the torch state details.
type TorchPayloadInner struct {
	Timestamp string `json:"timestamp"`
	On        bool   `json:"on"`
}

// FormatTorchPayload creates the JSON payload for a torch message.
func FormatTorchPayload(msg TorchMessage) ([]byte, error) {
	payload := TorchPayload{
		Torch: TorchPayloadInner{
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
			On:        msg.On,
		},
	}
	return json.Marshal(payload)
}

// StatePayload is the wire shape for engine state messages.
type StatePayload struct {
	Engine StatePayloadInner `json:"engine"`
}

// StatePayloadInner contains the engine state details.
type StatePayloadInner struct {
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
}

// FormatStatePayload creates the JSON payload for an engine state message.
func FormatStatePayload(msg StateMessage) ([]byte, error) {
	payload := StatePayload{
		Engine: StatePayloadInner{
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
			State:     msg.State,
		},
	}
	return json.Marshal(payload)
}

// EventPayload is the wire shape for effect and error messages.
type EventPayload struct {
	Event EventPayloadInner `json:"event"`
}

// EventPayloadInner contains the event details.
type EventPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	EffectID  string `json:"effect_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Message   string `json:"message,omitempty"`
}

// FormatEventPayload creates the JSON payload for an event message.
func FormatEventPayload(msg EventMessage) ([]byte, error) {
	payload := EventPayload{
		Event: EventPayloadInner{
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
			Event:     msg.Event,
			EffectID:  msg.EffectID,
			Kind:      msg.Kind,
			Message:   msg.Message,
		},
	}
	return json.Marshal(payload)
}
