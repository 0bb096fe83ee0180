package strobe

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEffect_UnmarshalDefaults(t *testing.T) {
	var e Effect
	if err := json.Unmarshal([]byte(`{}`), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if e.Kind != KindStrobe {
		t.Errorf("Expected default type STROBE, got %s", e.Kind)
	}
	if e.DurationMs != 1000 {
		t.Errorf("Expected default durationMs 1000, got %d", e.DurationMs)
	}
	if e.Frequency != 10.0 {
		t.Errorf("Expected default frequency 10, got %g", e.Frequency)
	}
	if e.Intensity != 1.0 {
		t.Errorf("Expected default intensity 1, got %g", e.Intensity)
	}
	if e.ID == "" {
		t.Error("Expected a generated ID")
	}
}

func TestEffect_UnmarshalExplicit(t *testing.T) {
	input := `{"id":"fx-7","type":"pulse","durationMs":250,"frequency":4,"intensity":0.5}`

	var e Effect
	if err := json.Unmarshal([]byte(input), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if e.ID != "fx-7" {
		t.Errorf("Expected id fx-7, got %s", e.ID)
	}
	if e.Kind != KindPulse {
		t.Errorf("Expected type PULSE (case-insensitive), got %s", e.Kind)
	}
	if e.DurationMs != 250 || e.Frequency != 4 || e.Intensity != 0.5 {
		t.Errorf("Unexpected fields: %s", e.String())
	}
}

func TestEffect_UnmarshalInvalid(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unknown type", `{"type":"BLINK"}`},
		{"negative duration", `{"durationMs":-5}`},
		{"intensity out of range", `{"intensity":1.5}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e Effect
			if err := json.Unmarshal([]byte(tc.input), &e); err == nil {
				t.Errorf("Expected error for %s", tc.input)
			}
		})
	}
}

func TestEffect_RoundTrip(t *testing.T) {
	orig := NewEffect(KindStrobe, 2000, 12.5, 0.8)

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Effect
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got != orig {
		t.Errorf("Round trip mismatch:\n  orig %s\n  got  %s", orig.String(), got.String())
	}
}

func TestEffect_HalfPeriod(t *testing.T) {
	cases := []struct {
		frequency float64
		want      time.Duration
	}{
		{10, 50 * time.Millisecond},
		{5, 100 * time.Millisecond},
		{2.5, 200 * time.Millisecond},
		{0, 0},
		{-1, 0},
	}

	for _, tc := range cases {
		e := Effect{Frequency: tc.frequency}
		if got := e.HalfPeriod(); got != tc.want {
			t.Errorf("HalfPeriod(%gHz) = %v, want %v", tc.frequency, got, tc.want)
		}
	}
}

func TestEffect_Normalize(t *testing.T) {
	e := Effect{Kind: "strobe", DurationMs: 100}
	e.Normalize()

	if e.Kind != KindStrobe {
		t.Errorf("Expected normalized kind STROBE, got %s", e.Kind)
	}
	if e.ID == "" {
		t.Error("Expected a generated ID")
	}
	if e.Frequency != DefaultFrequency {
		t.Errorf("Expected default frequency for strobe, got %g", e.Frequency)
	}

	empty := Effect{}
	empty.Normalize()
	if empty.Kind != DefaultKind {
		t.Errorf("Expected default kind for empty effect, got %s", empty.Kind)
	}
}

func TestEffect_GeneratedIDsUnique(t *testing.T) {
	a := NewEffect(KindOn, 100, 0, 1)
	b := NewEffect(KindOn, 100, 0, 1)

	if a.ID == b.ID {
		t.Errorf("Expected unique IDs, both were %s", a.ID)
	}
	if !strings.HasPrefix(a.ID, "effect_") {
		t.Errorf("Expected effect_ prefix, got %s", a.ID)
	}
}
