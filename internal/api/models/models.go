// Package models contains the request and response bodies for the HTTP API.
package models

import (
	"time"

	"github.com/smazurov/strobed/internal/strobe"
)

// HealthData represents the health check response body.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

// HealthResponse wraps the health data for Huma.
type HealthResponse struct {
	Body HealthData
}

// MessageData is a generic acknowledgement body for command endpoints.
type MessageData struct {
	Message string `json:"message" example:"started" doc:"Result of the command"`
}

// MessageResponse wraps a message body for Huma.
type MessageResponse struct {
	Body MessageData
}

// EngineStatusData describes the current engine state.
type EngineStatusData struct {
	State     string `json:"state" example:"RUNNING" doc:"Engine state: IDLE, RUNNING, PAUSED, STOPPED"`
	QueueSize int    `json:"queue_size" example:"3" doc:"Number of effects waiting in the queue"`
	TorchOn   bool   `json:"torch_on" example:"true" doc:"Last commanded torch state"`
}

// EngineStatusResponse wraps the engine status for Huma.
type EngineStatusResponse struct {
	Body EngineStatusData
}

// TorchStatusData describes the torch controller.
type TorchStatusData struct {
	On        bool   `json:"on" example:"false" doc:"Last commanded torch state"`
	Available bool   `json:"available" example:"true" doc:"Whether the torch hardware is usable"`
	Backend   string `json:"backend" example:"sysfs" doc:"Torch controller backend name"`
}

// TorchStatusResponse wraps the torch status for Huma.
type TorchStatusResponse struct {
	Body TorchStatusData
}

// IntensityRequest is the body for the analog intensity endpoint.
type IntensityRequest struct {
	Intensity float64 `json:"intensity" minimum:"0" maximum:"1" example:"0.8" doc:"Requested intensity in [0, 1]"`
	Threshold float64 `json:"threshold,omitempty" minimum:"0" maximum:"1" default:"0.5" example:"0.5" doc:"Cutoff above which the torch turns on"`
}

// EffectRequest is the wire form of an effect. Every field is optional;
// omitted fields fall back to the same defaults the engine uses.
type EffectRequest struct {
	ID         string  `json:"id,omitempty" example:"d2f1c0a4" doc:"Optional client-supplied identifier, generated when omitted"`
	Type       string  `json:"type,omitempty" default:"STROBE" example:"STROBE" doc:"Effect kind: ON, OFF, STROBE, PULSE (case-insensitive)"`
	DurationMs int64   `json:"durationMs,omitempty" default:"1000" minimum:"1" example:"1000" doc:"Effect duration in milliseconds"`
	Frequency  float64 `json:"frequency,omitempty" default:"10" minimum:"0" example:"10" doc:"Toggle frequency in Hz for STROBE and PULSE"`
	Intensity  float64 `json:"intensity,omitempty" default:"1" minimum:"0" maximum:"1" example:"1" doc:"Requested intensity in [0, 1]"`
}

// ToEffect converts the request into a normalized engine effect.
func (r EffectRequest) ToEffect() strobe.Effect {
	effect := strobe.Effect{
		ID:         r.ID,
		Kind:       strobe.Kind(r.Type),
		DurationMs: r.DurationMs,
		Frequency:  r.Frequency,
		Intensity:  r.Intensity,
	}
	effect.Normalize()
	return effect
}

// EnqueueData reports the effect accepted onto the queue.
type EnqueueData struct {
	ID        string `json:"id" example:"d2f1c0a4" doc:"Assigned effect identifier"`
	QueueSize int    `json:"queue_size" example:"1" doc:"Queue size after the enqueue"`
}

// EnqueueResponse wraps the enqueue result for Huma.
type EnqueueResponse struct {
	Body EnqueueData
}

// EnqueueBatchData reports a batch of effects accepted onto the queue.
type EnqueueBatchData struct {
	IDs       []string `json:"ids" doc:"Assigned effect identifiers, in queue order"`
	QueueSize int      `json:"queue_size" example:"4" doc:"Queue size after the enqueue"`
}

// EnqueueBatchResponse wraps the batch enqueue result for Huma.
type EnqueueBatchResponse struct {
	Body EnqueueBatchData
}

// QueueData describes the effect queue.
type QueueData struct {
	Size int `json:"size" example:"2" doc:"Number of effects waiting in the queue"`
}

// QueueResponse wraps the queue data for Huma.
type QueueResponse struct {
	Body QueueData
}

// SequenceData is a named, persisted list of effects.
type SequenceData struct {
	Name        string          `json:"name" example:"sos" doc:"Sequence name"`
	Description string          `json:"description,omitempty" example:"Morse SOS pattern" doc:"Optional description"`
	Effects     []strobe.Effect `json:"effects" doc:"Effects in playback order"`
}

// SequenceResponse wraps a single sequence for Huma.
type SequenceResponse struct {
	Body SequenceData
}

// SequenceListData lists all stored sequences.
type SequenceListData struct {
	Sequences []SequenceData `json:"sequences" doc:"Stored sequences, sorted by name"`
	Count     int            `json:"count" example:"2" doc:"Number of sequences"`
}

// SequenceListResponse wraps the sequence list for Huma.
type SequenceListResponse struct {
	Body SequenceListData
}

// PlayData reports a sequence handed to the engine.
type PlayData struct {
	Message   string `json:"message" example:"sequence enqueued" doc:"Result of the command"`
	Enqueued  int    `json:"enqueued" example:"3" doc:"Number of effects enqueued"`
	QueueSize int    `json:"queue_size" example:"3" doc:"Queue size after the enqueue"`
}

// PlayResponse wraps the play result for Huma.
type PlayResponse struct {
	Body PlayData
}

// VersionData contains version and build information.
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"12345" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

// VersionResponse wraps version data for Huma.
type VersionResponse struct {
	Body VersionData
}

// UpdateCheckData contains the result of an update check.
type UpdateCheckData struct {
	CurrentVersion  string    `json:"current_version" example:"1.0.0" doc:"Currently running version"`
	LatestVersion   string    `json:"latest_version" example:"1.1.0" doc:"Latest released version"`
	ReleaseNotes    string    `json:"release_notes,omitempty" doc:"Release notes for the latest version"`
	ReleaseURL      string    `json:"release_url,omitempty" doc:"URL of the release page"`
	PublishedAt     time.Time `json:"published_at,omitempty" doc:"Release publish time"`
	AssetSize       int       `json:"asset_size,omitempty" doc:"Download size in bytes"`
	UpdateAvailable bool      `json:"update_available" example:"true" doc:"Whether an update is available"`
}

// UpdateCheckResponse wraps the update check result for Huma.
type UpdateCheckResponse struct {
	Body UpdateCheckData
}

// UpdateStatusData contains the current updater state.
type UpdateStatusData struct {
	State          string     `json:"state" example:"idle" doc:"Updater state"`
	CurrentVersion string     `json:"current_version" example:"1.0.0" doc:"Currently running version"`
	TargetVersion  string     `json:"target_version,omitempty" doc:"Version being applied, if any"`
	Error          string     `json:"error,omitempty" doc:"Last error, if any"`
	LastChecked    *time.Time `json:"last_checked,omitempty" doc:"Time of the last update check"`
}

// UpdateStatusResponse wraps the updater status for Huma.
type UpdateStatusResponse struct {
	Body UpdateStatusData
}

// UpdateApplyResponse acknowledges an applied update.
type UpdateApplyResponse struct {
	Body MessageData
}

// RestartResponse acknowledges a restart request.
type RestartResponse struct {
	Body MessageData
}
