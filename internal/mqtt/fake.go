package mqtt

import "sync"

// FakePublisher records published messages for test assertions.
// Safe for concurrent use; the bridge publishes from bus goroutines.
type FakePublisher struct {
	mu sync.Mutex

	// TorchMessages contains all torch messages that were published.
	TorchMessages []TorchMessage

	// StateMessages contains all engine state messages that were published.
	StateMessages []StateMessage

	// EventMessages contains all event messages that were published.
	EventMessages []EventMessage

	// PublishError, if set, is returned by every publish method.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// PublishTorch records the torch message.
func (f *FakePublisher) PublishTorch(msg TorchMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.TorchMessages = append(f.TorchMessages, msg)
	return nil
}

// PublishState records the state message.
func (f *FakePublisher) PublishState(msg StateMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.StateMessages = append(f.StateMessages, msg)
	return nil
}

// PublishEvent records the event message.
func (f *FakePublisher) PublishEvent(msg EventMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.EventMessages = append(f.EventMessages, msg)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Torch returns a copy of the recorded torch messages.
func (f *FakePublisher) Torch() []TorchMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]TorchMessage, len(f.TorchMessages))
	copy(out, f.TorchMessages)
	return out
}

// States returns a copy of the recorded state messages.
func (f *FakePublisher) States() []StateMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]StateMessage, len(f.StateMessages))
	copy(out, f.StateMessages)
	return out
}

// Events returns a copy of the recorded event messages.
func (f *FakePublisher) Events() []EventMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]EventMessage, len(f.EventMessages))
	copy(out, f.EventMessages)
	return out
}
