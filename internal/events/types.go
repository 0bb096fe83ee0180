package events

// Event type constants for kelindar/event.
const (
	TypeEffectStarted uint32 = iota + 1
	TypeEffectCompleted
	TypeQueueEmpty
	TypeEngineError
	TypeStateChanged
	TypeTorchState
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// EffectStartedEvent is published when the engine begins executing an effect.
type EffectStartedEvent struct {
	EffectID  string `json:"effect_id" example:"d2f1c0a4" doc:"Identifier of the effect that started"`
	Kind      string `json:"kind" example:"STROBE" doc:"Effect kind: ON, OFF, STROBE, PULSE"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EffectStartedEvent.
func (e EffectStartedEvent) Type() uint32 { return TypeEffectStarted }

// EffectCompletedEvent is published when an effect runs to completion.
type EffectCompletedEvent struct {
	EffectID  string `json:"effect_id" example:"d2f1c0a4" doc:"Identifier of the effect that completed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EffectCompletedEvent.
func (e EffectCompletedEvent) Type() uint32 { return TypeEffectCompleted }

// QueueEmptyEvent is published when the engine drains its effect queue.
type QueueEmptyEvent struct {
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for QueueEmptyEvent.
func (e QueueEmptyEvent) Type() uint32 { return TypeQueueEmpty }

// EngineErrorEvent is published for recoverable engine failures: an
// unavailable torch, invalid effect parameters, or a hardware call that
// returned an error.
type EngineErrorEvent struct {
	Message   string `json:"message" example:"torch not available" doc:"Error message"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for EngineErrorEvent.
func (e EngineErrorEvent) Type() uint32 { return TypeEngineError }

// StateChangedEvent is published on every engine state transition.
type StateChangedEvent struct {
	State     string `json:"state" example:"RUNNING" doc:"Engine state: IDLE, RUNNING, PAUSED, STOPPED"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StateChangedEvent.
func (e StateChangedEvent) Type() uint32 { return TypeStateChanged }

// TorchStateEvent is published on every successful torch command.
// Used by the metrics recorder and the MQTT bridge.
type TorchStateEvent struct {
	On        bool   `json:"on" example:"true" doc:"Whether the torch was commanded on"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for TorchStateEvent.
func (e TorchStateEvent) Type() uint32 { return TypeTorchState }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"engine" doc:"Module that produced the log"`
	Message    string         `json:"message" example:"Engine started" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
