// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/strobed/internal/events"
)

// EngineStats is the read surface the recorder polls at scrape time.
// Satisfied by *strobe.Engine.
type EngineStats interface {
	QueueSize() int
	TorchOn() bool
}

// Recorder subscribes to the event bus and maintains Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry
	handler  http.Handler
	unsubs   []func()

	toggles          *prometheus.CounterVec
	effectsStarted   *prometheus.CounterVec
	effectsCompleted prometheus.Counter
	engineErrors     prometheus.Counter
	engineState      *prometheus.GaugeVec
}

// NewRecorder creates a recorder on the given registry and wires it to the
// event bus. A nil registry gets a fresh one.
func NewRecorder(registry *prometheus.Registry, bus *events.Bus, stats EngineStats) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strobed_torch_toggles_total",
			Help: "Torch commands issued, by commanded state.",
		}, []string{"state"}),
		effectsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strobed_effects_started_total",
			Help: "Effects the engine began executing, by kind.",
		}, []string{"kind"}),
		effectsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strobed_effects_completed_total",
			Help: "Effects that ran to completion.",
		}),
		engineErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strobed_engine_errors_total",
			Help: "Recoverable engine errors, including torch command failures.",
		}),
		engineState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "strobed_engine_state",
			Help: "Current engine state, 1 for the active state and 0 otherwise.",
		}, []string{"state"}),
	}

	registry.MustRegister(r.toggles, r.effectsStarted, r.effectsCompleted, r.engineErrors, r.engineState)

	if stats != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "strobed_queue_size",
			Help: "Pending effects in the queue, excluding the one executing.",
		}, func() float64 { return float64(stats.QueueSize()) }))
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "strobed_torch_on",
			Help: "Last successfully commanded torch value.",
		}, func() float64 {
			if stats.TorchOn() {
				return 1
			}
			return 0
		}))
	}

	// Gauges start with IDLE asserted so a scrape before any transition
	// still reports a state.
	for _, state := range []string{"IDLE", "RUNNING", "PAUSED", "STOPPED"} {
		r.engineState.WithLabelValues(state).Set(0)
	}
	r.engineState.WithLabelValues("IDLE").Set(1)

	if bus != nil {
		r.unsubs = append(r.unsubs,
			bus.Subscribe(func(ev events.TorchStateEvent) {
				if ev.On {
					r.toggles.WithLabelValues("on").Inc()
				} else {
					r.toggles.WithLabelValues("off").Inc()
				}
			}),
			bus.Subscribe(func(ev events.EffectStartedEvent) {
				r.effectsStarted.WithLabelValues(ev.Kind).Inc()
			}),
			bus.Subscribe(func(ev events.EffectCompletedEvent) {
				r.effectsCompleted.Inc()
			}),
			bus.Subscribe(func(ev events.EngineErrorEvent) {
				r.engineErrors.Inc()
			}),
			bus.Subscribe(func(ev events.StateChangedEvent) {
				for _, state := range []string{"IDLE", "RUNNING", "PAUSED", "STOPPED"} {
					if state == ev.State {
						r.engineState.WithLabelValues(state).Set(1)
					} else {
						r.engineState.WithLabelValues(state).Set(0)
					}
				}
			}),
		)
	}

	return r
}

// Handler returns the scrape handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return r.handler
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Close detaches the recorder from the event bus.
func (r *Recorder) Close() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}
