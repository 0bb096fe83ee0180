package strobe

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what an effect does with the torch.
type Kind string

// Effect kinds.
const (
	KindOn     Kind = "ON"     // Torch on for the duration
	KindOff    Kind = "OFF"    // Torch off for the duration
	KindStrobe Kind = "STROBE" // Toggle at frequency for the duration
	KindPulse  Kind = "PULSE"  // Single on/off blip, one half-period wide
)

// Producer-side defaults applied when fields are omitted.
const (
	DefaultKind       = KindStrobe
	DefaultDurationMs = 1000
	DefaultFrequency  = 10.0
	DefaultIntensity  = 1.0
)

// Effect is one scheduled unit of torch behavior. Effects are immutable
// once enqueued; the engine only ever copies them.
type Effect struct {
	ID         string  `json:"id" toml:"id"`
	Kind       Kind    `json:"type" toml:"type"`
	DurationMs int64   `json:"durationMs" toml:"duration_ms"`
	Frequency  float64 `json:"frequency" toml:"frequency"`
	Intensity  float64 `json:"intensity" toml:"intensity"`
}

// NewEffect creates an effect with a generated ID.
func NewEffect(kind Kind, durationMs int64, frequency, intensity float64) Effect {
	return Effect{
		ID:         newEffectID(),
		Kind:       kind,
		DurationMs: durationMs,
		Frequency:  frequency,
		Intensity:  intensity,
	}
}

func newEffectID() string {
	return "effect_" + uuid.NewString()
}

// Duration returns the planned duration as a time.Duration.
func (e Effect) Duration() time.Duration {
	return time.Duration(e.DurationMs) * time.Millisecond
}

// Period returns the full strobe period, zero when frequency is not positive.
func (e Effect) Period() time.Duration {
	if e.Frequency <= 0 {
		return 0
	}
	return time.Duration(1000.0 / e.Frequency * float64(time.Millisecond))
}

// HalfPeriod returns the width of a single on or off phase.
func (e Effect) HalfPeriod() time.Duration {
	return e.Period() / 2
}

// Validate checks invariants shared by all decode paths.
func (e Effect) Validate() error {
	switch e.Kind {
	case KindOn, KindOff, KindStrobe, KindPulse:
	default:
		return fmt.Errorf("unknown effect type %q", e.Kind)
	}
	if e.DurationMs < 0 {
		return fmt.Errorf("durationMs must be >= 0, got %d", e.DurationMs)
	}
	if e.Intensity < 0 || e.Intensity > 1 {
		return fmt.Errorf("intensity must be within 0..1, got %g", e.Intensity)
	}
	return nil
}

// Normalize fills defaults for zero-value fields coming from config files
// and assigns an ID when absent. Kind comparison is case-insensitive.
// TOML cannot distinguish omitted from zero, so frequency is defaulted for
// the kinds that require one.
func (e *Effect) Normalize() {
	if e.Kind == "" {
		e.Kind = DefaultKind
	} else {
		e.Kind = Kind(strings.ToUpper(string(e.Kind)))
	}
	if e.ID == "" {
		e.ID = newEffectID()
	}
	if (e.Kind == KindStrobe || e.Kind == KindPulse) && e.Frequency <= 0 {
		e.Frequency = DefaultFrequency
	}
}

// UnmarshalJSON decodes the wire shape, applying producer defaults for
// omitted fields: type=STROBE, durationMs=1000, frequency=10, intensity=1.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         *string  `json:"id"`
		Type       *string  `json:"type"`
		DurationMs *int64   `json:"durationMs"`
		Frequency  *float64 `json:"frequency"`
		Intensity  *float64 `json:"intensity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Effect{
		Kind:       DefaultKind,
		DurationMs: DefaultDurationMs,
		Frequency:  DefaultFrequency,
		Intensity:  DefaultIntensity,
	}

	if raw.Type != nil {
		out.Kind = Kind(strings.ToUpper(*raw.Type))
	}
	if raw.DurationMs != nil {
		out.DurationMs = *raw.DurationMs
	}
	if raw.Frequency != nil {
		out.Frequency = *raw.Frequency
	}
	if raw.Intensity != nil {
		out.Intensity = *raw.Intensity
	}
	if raw.ID != nil && *raw.ID != "" {
		out.ID = *raw.ID
	} else {
		out.ID = newEffectID()
	}

	if err := out.Validate(); err != nil {
		return err
	}

	*e = out
	return nil
}

func (e Effect) String() string {
	return fmt.Sprintf("Effect{id=%s type=%s duration=%dms frequency=%gHz intensity=%g}",
		e.ID, e.Kind, e.DurationMs, e.Frequency, e.Intensity)
}
