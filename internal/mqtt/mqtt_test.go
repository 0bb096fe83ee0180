package mqtt

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/smazurov/strobed/internal/events"
)

func TestFormatTorchPayload(t *testing.T) {
	msg := TorchMessage{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		On:        true,
	}

	payload, err := FormatTorchPayload(msg)
	if err != nil {
		t.Fatalf("FormatTorchPayload failed: %v", err)
	}

	want := `{"torch":{"timestamp":"2026-03-14T09:26:53Z","on":true}}`
	if string(payload) != want {
		t.Errorf("Payload mismatch:\ngot  %s\nwant %s", payload, want)
	}
}

func TestFormatStatePayload(t *testing.T) {
	msg := StateMessage{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		State:     "RUNNING",
	}

	payload, err := FormatStatePayload(msg)
	if err != nil {
		t.Fatalf("FormatStatePayload failed: %v", err)
	}

	want := `{"engine":{"timestamp":"2026-03-14T09:26:53Z","state":"RUNNING"}}`
	if string(payload) != want {
		t.Errorf("Payload mismatch:\ngot  %s\nwant %s", payload, want)
	}
}

func TestFormatEventPayloadOmitsEmpty(t *testing.T) {
	msg := EventMessage{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     EventQueueEmpty,
	}

	payload, err := FormatEventPayload(msg)
	if err != nil {
		t.Fatalf("FormatEventPayload failed: %v", err)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Payload is not valid JSON: %v", err)
	}

	inner := decoded["event"]
	if inner["event"] != "QUEUE_EMPTY" {
		t.Errorf("Expected event QUEUE_EMPTY, got %v", inner["event"])
	}
	for _, absent := range []string{"effect_id", "kind", "message"} {
		if _, ok := inner[absent]; ok {
			t.Errorf("Empty field %q should be omitted", absent)
		}
	}
}

func waitForCount(t *testing.T, what string, count func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d %s, have %d", want, what, count())
}

func TestBridgeForwardsBusEvents(t *testing.T) {
	bus := events.New()
	fake := NewFakePublisher()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	bridge := NewBridge(fake, bus, logger)
	defer bridge.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	bus.Publish(events.TorchStateEvent{On: true, Timestamp: now})
	bus.Publish(events.StateChangedEvent{State: "RUNNING", Timestamp: now})
	bus.Publish(events.EffectStartedEvent{EffectID: "e1", Kind: "STROBE", Timestamp: now})
	bus.Publish(events.EffectCompletedEvent{EffectID: "e1", Timestamp: now})
	bus.Publish(events.QueueEmptyEvent{Timestamp: now})
	bus.Publish(events.EngineErrorEvent{Message: "torch busy", Timestamp: now})

	waitForCount(t, "torch messages", func() int { return len(fake.Torch()) }, 1)
	waitForCount(t, "state messages", func() int { return len(fake.States()) }, 1)
	waitForCount(t, "event messages", func() int { return len(fake.Events()) }, 4)

	if !fake.Torch()[0].On {
		t.Error("Expected torch message on=true")
	}
	if fake.States()[0].State != "RUNNING" {
		t.Errorf("Expected state RUNNING, got %s", fake.States()[0].State)
	}

	kinds := make(map[string]EventMessage)
	for _, ev := range fake.Events() {
		kinds[ev.Event] = ev
	}
	if ev, ok := kinds[EventEffectStarted]; !ok || ev.EffectID != "e1" || ev.Kind != "STROBE" {
		t.Errorf("Unexpected started event: %+v", ev)
	}
	if ev, ok := kinds[EventError]; !ok || ev.Message != "torch busy" {
		t.Errorf("Unexpected error event: %+v", ev)
	}
	if _, ok := kinds[EventQueueEmpty]; !ok {
		t.Error("Missing queue-empty event")
	}
}

func TestBridgeSurvivesPublishErrors(t *testing.T) {
	bus := events.New()
	fake := NewFakePublisher()
	fake.PublishError = os.ErrDeadlineExceeded
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	bridge := NewBridge(fake, bus, logger)
	defer bridge.Close()

	// Must not panic or block
	bus.Publish(events.TorchStateEvent{On: true})
	time.Sleep(50 * time.Millisecond)

	if len(fake.Torch()) != 0 {
		t.Error("Failed publish should not be recorded")
	}
}

func TestBridgeCloseClosesPublisher(t *testing.T) {
	bus := events.New()
	fake := NewFakePublisher()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	bridge := NewBridge(fake, bus, logger)
	if err := bridge.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !fake.Closed {
		t.Error("Expected publisher to be closed")
	}

	bus.Publish(events.TorchStateEvent{On: true})
	time.Sleep(50 * time.Millisecond)
	if len(fake.Torch()) != 0 {
		t.Error("Closed bridge should not forward events")
	}
}
