package events

import (
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan EffectStartedEvent, 1)

	unsub := bus.Subscribe(func(e EffectStartedEvent) {
		received <- e
	})
	defer unsub()

	event := EffectStartedEvent{
		EffectID:  "fx-1",
		Kind:      "STROBE",
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.EffectID != event.EffectID {
		t.Errorf("Expected effect_id %s, got %s", event.EffectID, got.EffectID)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan StateChangedEvent, 1)
	received2 := make(chan StateChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e StateChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e StateChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(StateChangedEvent{State: "RUNNING"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan EngineErrorEvent, 1)

	unsub := bus.Subscribe(func(e EngineErrorEvent) {
		received <- e
	})

	bus.Publish(EngineErrorEvent{Message: "torch not available"})
	<-received

	unsub()

	bus.Publish(EngineErrorEvent{Message: "again"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	startedReceived := make(chan bool, 1)
	torchReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ EffectStartedEvent) {
		startedReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ TorchStateEvent) {
		torchReceived <- true
	})
	defer unsub2()

	bus.Publish(EffectStartedEvent{EffectID: "fx-1"})
	<-startedReceived

	select {
	case <-torchReceived:
		t.Fatal("Torch subscriber should NOT have received EffectStartedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	bus.Publish(TorchStateEvent{On: true})
	<-torchReceived

	select {
	case <-startedReceived:
		t.Fatal("Effect subscriber should NOT have received TorchStateEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestBus_UnknownHandlerType(t *testing.T) {
	bus := New()

	// An unrecognized handler signature should yield a working no-op unsubscribe
	unsub := bus.Subscribe(func(s string) {})
	if unsub == nil {
		t.Fatal("Expected non-nil unsubscribe function")
	}
	unsub()
}

type unroutedEvent struct{}

func (unroutedEvent) Type() uint32 { return 999 }

func TestBus_UnroutedEventDoesNotPanic(_ *testing.T) {
	bus := New()

	// Event types without a dispatch case are dropped with a warning
	bus.Publish(unroutedEvent{})
}

func TestBus_DispatchesEveryEventType(t *testing.T) {
	bus := New()
	received := make(chan uint32, 16)

	unsubs := []func(){
		bus.Subscribe(func(e EffectStartedEvent) { received <- e.Type() }),
		bus.Subscribe(func(e EffectCompletedEvent) { received <- e.Type() }),
		bus.Subscribe(func(e QueueEmptyEvent) { received <- e.Type() }),
		bus.Subscribe(func(e EngineErrorEvent) { received <- e.Type() }),
		bus.Subscribe(func(e StateChangedEvent) { received <- e.Type() }),
		bus.Subscribe(func(e TorchStateEvent) { received <- e.Type() }),
		bus.Subscribe(func(e LogEntryEvent) { received <- e.Type() }),
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	published := []Event{
		EffectStartedEvent{},
		EffectCompletedEvent{},
		QueueEmptyEvent{},
		EngineErrorEvent{},
		StateChangedEvent{},
		TorchStateEvent{},
		LogEntryEvent{},
	}
	for _, ev := range published {
		bus.Publish(ev)
	}

	got := make(map[uint32]bool)
	deadline := time.After(time.Second)
	for len(got) < len(published) {
		select {
		case tp := <-received:
			got[tp] = true
		case <-deadline:
			t.Fatalf("Only %d of %d event types delivered", len(got), len(published))
		}
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 2)

	unsub := SubscribeToChannel[EffectCompletedEvent](bus, ch)
	defer unsub()

	bus.Publish(EffectCompletedEvent{EffectID: "fx-1"})

	select {
	case got := <-ch:
		ev, ok := got.(EffectCompletedEvent)
		if !ok {
			t.Fatalf("Expected EffectCompletedEvent, got %T", got)
		}
		if ev.EffectID != "fx-1" {
			t.Errorf("Expected effect_id fx-1, got %s", ev.EffectID)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // Unbuffered, nobody reading

	unsub := SubscribeToChannel[QueueEmptyEvent](bus, ch)
	defer unsub()

	// Must not block even though the channel is full
	bus.Publish(QueueEmptyEvent{})
	bus.Publish(QueueEmptyEvent{})
}
