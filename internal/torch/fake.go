package torch

import (
	"errors"
	"sync"
	"time"
)

// Transition records a single Set call on the fake.
type Transition struct {
	On bool
	At time.Time
}

// Fake is a test double that records every torch command.
// It is safe for concurrent use; the engine commands it from its scheduling
// goroutine while tests inspect it from the test goroutine.
type Fake struct {
	mu          sync.Mutex
	transitions []Transition
	last        bool
	unavailable bool
	failNext    int
	alwaysFail  bool
	closed      bool
}

// NewFake creates a fake torch controller.
func NewFake() *Fake {
	return &Fake{}
}

// Set records the command, honoring any scripted failures.
func (f *Fake) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.alwaysFail {
		return errors.New("torch hardware busy")
	}
	if f.failNext > 0 {
		f.failNext--
		return errors.New("torch hardware busy")
	}

	f.transitions = append(f.transitions, Transition{On: on, At: time.Now()})
	f.last = on
	return nil
}

// Available reports the scripted availability.
func (f *Fake) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unavailable
}

// Name identifies the backing implementation.
func (f *Fake) Name() string {
	return "fake"
}

// Close marks the fake as closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// SetUnavailable scripts the Available result.
func (f *Fake) SetUnavailable(unavailable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unavailable = unavailable
}

// FailNext makes the next n Set calls fail.
func (f *Fake) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// FailAlways makes every Set call fail until cleared.
func (f *Fake) FailAlways(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alwaysFail = fail
}

// Last returns the most recent successfully commanded value.
func (f *Fake) Last() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Transitions returns a copy of all recorded commands.
func (f *Fake) Transitions() []Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transition, len(f.transitions))
	copy(out, f.transitions)
	return out
}

// Reset clears recorded commands and scripted failures.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = nil
	f.last = false
	f.failNext = 0
	f.alwaysFail = false
	f.closed = false
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
