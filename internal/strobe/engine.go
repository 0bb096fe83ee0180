package strobe

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/strobed/internal/events"
	"github.com/smazurov/strobed/internal/torch"
)

// State is the engine's lifecycle phase.
type State string

// Engine states. The torch is guaranteed off whenever the state is IDLE,
// PAUSED, or STOPPED.
const (
	StateIdle    State = "IDLE"
	StateRunning State = "RUNNING"
	StatePaused  State = "PAUSED"
	StateStopped State = "STOPPED"
)

const (
	// forceOffAttempts is how many times ForceOff retries the hardware
	// off-command before giving up.
	forceOffAttempts = 3

	// defaultPulseWidth is used for PULSE effects without a usable frequency.
	defaultPulseWidth = 50 * time.Millisecond

	cmdBufferSize = 64
)

// Engine executes queued effects against a torch controller on a single
// dedicated goroutine, so toggle timing is never interleaved with API or
// I/O work. All exported methods are fire-and-return; outcomes are observed
// through the event bus.
type Engine struct {
	torch  torch.Controller
	bus    *events.Bus
	logger *slog.Logger

	autoStart bool

	cmds   chan func()
	quit   chan struct{}
	doneCh chan struct{}
	once   sync.Once

	// Mirrors maintained by the scheduling goroutine for synchronous reads.
	state     atomic.Value // State
	queueLen  atomic.Int32
	lastTorch atomic.Bool

	// Flags checked by timer callbacks. Set before timer cancellation on
	// stop/forceOff so an already-fired callback still becomes a no-op.
	stopped atomic.Bool
	paused  atomic.Bool

	// State below is owned by the scheduling goroutine.
	queue         queue
	current       *Effect
	effectStart   time.Time
	elapsedBefore time.Duration // elapsed across earlier run segments of current
	timer         *time.Timer
	timerFn       func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithAutoStart controls the auto-start-on-enqueue policy. Default is on:
// enqueueing into an idle engine begins execution immediately.
func WithAutoStart(autoStart bool) Option {
	return func(e *Engine) {
		e.autoStart = autoStart
	}
}

// New creates an engine and starts its scheduling goroutine.
func New(ctrl torch.Controller, bus *events.Bus, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		torch:     ctrl,
		bus:       bus,
		logger:    logger,
		autoStart: true,
		cmds:      make(chan func(), cmdBufferSize),
		quit:      make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state.Store(StateIdle)
	e.stopped.Store(true)

	go e.run()
	return e
}

// run is the scheduling loop. It owns the queue, the current effect, and
// the single pending timer; commands and timer callbacks execute here and
// nowhere else.
func (e *Engine) run() {
	defer close(e.doneCh)

	for {
		var timerC <-chan time.Time
		if e.timer != nil {
			timerC = e.timer.C
		}

		select {
		case cmd := <-e.cmds:
			cmd()
		case <-timerC:
			fn := e.timerFn
			e.timer = nil
			e.timerFn = nil
			if fn != nil {
				fn()
			}
		case <-e.quit:
			e.stopCmd()
			return
		}
	}
}

// do marshals fn onto the scheduling goroutine. Calls after Close are dropped.
func (e *Engine) do(fn func()) {
	select {
	case e.cmds <- fn:
	case <-e.quit:
	}
}

// State returns the current engine state.
func (e *Engine) State() State {
	return e.state.Load().(State)
}

// QueueSize returns the number of pending effects, excluding the one
// currently executing.
func (e *Engine) QueueSize() int {
	return int(e.queueLen.Load())
}

// TorchOn returns the last successfully commanded torch value.
func (e *Engine) TorchOn() bool {
	return e.lastTorch.Load()
}

// Enqueue appends one effect. Under the auto-start policy, enqueueing while
// the engine is idle begins execution.
func (e *Engine) Enqueue(effect Effect) {
	e.do(func() {
		e.queue.push(effect)
		e.queueLen.Store(int32(e.queue.size()))
		e.logger.Debug("Enqueued effect", "effect", effect.String())
		e.maybeAutoStart()
	})
}

// EnqueueAll appends a batch of effects as one contiguous block.
func (e *Engine) EnqueueAll(effects []Effect) {
	batch := make([]Effect, len(effects))
	copy(batch, effects)
	e.do(func() {
		e.queue.pushAll(batch)
		e.queueLen.Store(int32(e.queue.size()))
		e.logger.Debug("Enqueued effects", "count", len(batch))
		e.maybeAutoStart()
	})
}

// ClearQueue drops all pending effects. The currently executing effect is
// not affected.
func (e *Engine) ClearQueue() {
	e.do(func() {
		e.queue.clear()
		e.queueLen.Store(0)
		e.logger.Debug("Queue cleared")
	})
}

// Start begins processing the queue. No-op when already running; reports an
// error event when the torch is unavailable. Starting with an empty queue is
// legal and immediately reports queue-empty.
func (e *Engine) Start() {
	e.do(e.startCmd)
}

// Pause suspends the current effect, retaining its remaining duration.
// Only meaningful while running.
func (e *Engine) Pause() {
	e.do(e.pauseCmd)
}

// Resume continues a paused session from where it left off. For STROBE
// effects the duty-cycle phase is recomputed from elapsed time.
func (e *Engine) Resume() {
	e.do(e.resumeCmd)
}

// Stop ends the session. Unlike Pause it is not resumable; a subsequent
// Start begins fresh from the queue's current front.
func (e *Engine) Stop() {
	e.do(e.stopCmd)
}

// ForceOff is the safety hatch: it halts scheduling and commands the torch
// off with retries, regardless of engine state. Callers should invoke it at
// session teardown even after a normal Stop.
func (e *Engine) ForceOff() {
	select {
	case e.cmds <- e.forceOffCmd:
	case <-e.quit:
		// Scheduling goroutine is gone; command the hardware directly.
		e.stopped.Store(true)
		e.forceTorchOff()
	}
}

// SwitchOn turns the torch on immediately, bypassing the queue.
func (e *Engine) SwitchOn() {
	e.do(func() { e.setTorch(true) })
}

// SwitchOff turns the torch off immediately, bypassing the queue.
func (e *Engine) SwitchOff() {
	e.do(func() { e.setTorch(false) })
}

// SetIntensity toggles the torch when the intensity crosses the threshold.
// Used for real-time modulation where the caller streams intensity samples.
func (e *Engine) SetIntensity(intensity, threshold float64) {
	e.do(func() {
		shouldBeOn := intensity >= threshold
		if shouldBeOn != e.lastTorch.Load() {
			e.setTorch(shouldBeOn)
		}
	})
}

// Close stops the engine, terminates the scheduling goroutine, and makes a
// final best-effort pass at turning the hardware off.
func (e *Engine) Close() {
	e.once.Do(func() {
		close(e.quit)
	})
	<-e.doneCh
	e.forceTorchOff()
}

// maybeAutoStart applies the auto-start-on-enqueue policy: idle engines
// (and paused ones with nothing in flight) begin executing. Stopped engines
// stay stopped until an explicit Start.
func (e *Engine) maybeAutoStart() {
	if !e.autoStart {
		return
	}
	switch e.State() {
	case StateIdle:
		e.startCmd()
	case StatePaused:
		if e.current == nil {
			e.startCmd()
		}
	}
}

func (e *Engine) startCmd() {
	if e.State() == StateRunning {
		e.logger.Debug("Already running")
		return
	}
	if !e.torch.Available() {
		e.publishError("torch not available")
		return
	}

	e.stopped.Store(false)
	e.paused.Store(false)
	e.current = nil
	e.elapsedBefore = 0

	e.setState(StateRunning)
	e.logger.Debug("Starting strobe engine")

	e.processNext()
}

func (e *Engine) pauseCmd() {
	if e.State() != StateRunning {
		return
	}

	e.paused.Store(true)

	// Bank the elapsed time of the current run segment.
	if e.current != nil && !e.effectStart.IsZero() {
		e.elapsedBefore += time.Since(e.effectStart)
	}

	// Cancel the pending callback before forcing the torch off, so a queued
	// toggle cannot re-assert the torch right after the off command.
	e.cancelPending()
	e.setTorch(false)

	e.setState(StatePaused)
	e.logger.Debug("Paused strobe engine", "elapsed", e.elapsedBefore)
}

func (e *Engine) resumeCmd() {
	if e.State() != StatePaused {
		return
	}

	e.paused.Store(false)
	e.setState(StateRunning)
	e.logger.Debug("Resuming strobe engine")

	if e.current != nil {
		remaining := e.current.Duration() - e.elapsedBefore
		if remaining > 0 {
			e.execute(*e.current, remaining, e.elapsedBefore)
		} else {
			e.completeCurrent()
		}
	} else {
		e.processNext()
	}
}

func (e *Engine) stopCmd() {
	e.logger.Debug("Stopping strobe engine")

	// Terminal flag first: a callback that already escaped cancellation must
	// observe it and become a no-op.
	e.stopped.Store(true)
	e.paused.Store(false)

	e.cancelPending()
	e.setTorch(false)

	e.current = nil
	e.effectStart = time.Time{}
	e.elapsedBefore = 0

	e.setState(StateStopped)
}

func (e *Engine) forceOffCmd() {
	e.logger.Debug("Force turning off torch")

	e.stopped.Store(true)
	e.paused.Store(false)
	e.cancelPending()

	e.current = nil
	e.effectStart = time.Time{}
	e.elapsedBefore = 0

	e.forceTorchOff()

	// Leave the engine in a restartable state. Without this a ForceOff
	// while RUNNING would keep reporting RUNNING, and Start's already-running
	// gate would refuse to ever run again.
	e.setState(StateStopped)
}

// forceTorchOff retries the hardware off-command. Failures are reported but
// never raised: the contract is best-effort guaranteed off.
func (e *Engine) forceTorchOff() {
	for attempt := 1; attempt <= forceOffAttempts; attempt++ {
		if err := e.torch.Set(false); err != nil {
			e.logger.Error("Force off attempt failed", "attempt", attempt, "error", err)
			e.publishError("force off failed: " + err.Error())
			continue
		}
		e.lastTorch.Store(false)
		e.bus.Publish(events.TorchStateEvent{On: false, Timestamp: timestamp()})
		return
	}
}

// processNext pops the queue and begins the next effect, or goes idle.
func (e *Engine) processNext() {
	if e.stopped.Load() || e.paused.Load() {
		return
	}

	next, ok := e.queue.pop()
	e.queueLen.Store(int32(e.queue.size()))

	if !ok {
		e.current = nil
		e.setTorch(false)
		e.setState(StateIdle)
		e.bus.Publish(events.QueueEmptyEvent{Timestamp: timestamp()})
		return
	}

	e.current = &next
	e.elapsedBefore = 0
	e.logger.Debug("Processing effect", "effect", next.String())
	e.bus.Publish(events.EffectStartedEvent{
		EffectID:  next.ID,
		Kind:      string(next.Kind),
		Timestamp: timestamp(),
	})

	e.execute(next, next.Duration(), 0)
}

// execute runs one effect with the given remaining duration budget.
// elapsed is how much of the effect already ran before a pause; it seeds
// the STROBE phase computation so the duty cycle continues seamlessly.
func (e *Engine) execute(effect Effect, remaining time.Duration, elapsed time.Duration) {
	e.effectStart = time.Now()

	switch effect.Kind {
	case KindOn:
		e.setTorch(true)
		e.scheduleCompletion(remaining)
	case KindOff:
		e.setTorch(false)
		e.scheduleCompletion(remaining)
	case KindPulse:
		e.executePulse(effect)
	case KindStrobe:
		e.executeStrobe(effect, remaining, elapsed)
	}
}

// executePulse produces a single blip: on for one half-period, then off.
// PULSE is not bound to durationMs.
func (e *Engine) executePulse(effect Effect) {
	e.setTorch(true)

	width := effect.HalfPeriod()
	if width <= 0 {
		width = defaultPulseWidth
	}

	e.schedule(width, func() {
		e.setTorch(false)
		e.completeCurrent()
	})
}

func (e *Engine) executeStrobe(effect Effect, remaining, elapsed time.Duration) {
	halfPeriod := effect.HalfPeriod()
	if halfPeriod <= 0 {
		e.publishError("invalid strobe frequency: " + effect.String())
		e.completeCurrent()
		return
	}

	// Phase at resume follows from total elapsed time: even half-period
	// index means the on phase, odd means off.
	on := (elapsed/halfPeriod)%2 == 0

	endTime := time.Now().Add(remaining)
	e.strobeLoop(halfPeriod, endTime, on)
}

// strobeLoop performs one toggle and schedules the next. The delay clamp
// keeps the final partial half-period from overshooting endTime.
func (e *Engine) strobeLoop(halfPeriod time.Duration, endTime time.Time, on bool) {
	if e.stopped.Load() || e.paused.Load() {
		return
	}

	now := time.Now()
	if !now.Before(endTime) {
		e.setTorch(false)
		e.completeCurrent()
		return
	}

	e.setTorch(on)

	delay := halfPeriod
	if rem := endTime.Sub(now); rem < delay {
		delay = rem
	}

	e.schedule(delay, func() {
		e.strobeLoop(halfPeriod, endTime, !on)
	})
}

func (e *Engine) scheduleCompletion(delay time.Duration) {
	e.schedule(delay, func() {
		if e.stopped.Load() || e.paused.Load() {
			return
		}
		e.completeCurrent()
	})
}

// completeCurrent is the advance path shared by every effect kind and by
// resume-with-nothing-remaining.
func (e *Engine) completeCurrent() {
	if e.current != nil {
		e.bus.Publish(events.EffectCompletedEvent{
			EffectID:  e.current.ID,
			Timestamp: timestamp(),
		})
		e.current = nil
	}
	e.processNext()
}

// schedule arms the single pending timer, replacing any previous one.
func (e *Engine) schedule(delay time.Duration, fn func()) {
	e.cancelPending()
	e.timerFn = fn
	e.timer = time.NewTimer(delay)
}

// cancelPending disarms the pending timer. Because the run loop only
// selects on the timer channel while e.timer is non-nil, a fire that races
// with cancellation is never delivered.
func (e *Engine) cancelPending() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
		e.timerFn = nil
	}
}

// setTorch commands the hardware and reports failures without aborting the
// scheduling loop: one missed toggle must not end a multi-minute session.
func (e *Engine) setTorch(on bool) {
	if err := e.torch.Set(on); err != nil {
		e.logger.Warn("Failed to control torch", "on", on, "error", err)
		e.publishError("failed to control torch: " + err.Error())
		return
	}
	e.lastTorch.Store(on)
	e.bus.Publish(events.TorchStateEvent{On: on, Timestamp: timestamp()})
}

func (e *Engine) setState(state State) {
	e.state.Store(state)
	e.bus.Publish(events.StateChangedEvent{State: string(state), Timestamp: timestamp()})
}

func (e *Engine) publishError(message string) {
	e.logger.Error("Engine error", "message", message)
	e.bus.Publish(events.EngineErrorEvent{Message: message, Timestamp: timestamp()})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
