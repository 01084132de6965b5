// Package metrics exposes state lifecycle counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lifecycle counts state tree activity. A nil *Lifecycle discards everything,
// so states built without metrics need no special casing.
type Lifecycle struct {
	Transitions   *prometheus.CounterVec
	Created       prometheus.Counter
	Destroyed     prometheus.Counter
	RootSwitches  prometheus.Counter
	Frames        prometheus.Counter
	StackDepth    prometheus.Gauge
	FrameDuration prometheus.Histogram
}

// New registers the lifecycle collectors on reg.
func New(reg prometheus.Registerer) *Lifecycle {
	f := promauto.With(reg)
	return &Lifecycle{
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statestack_substate_transitions_total",
				Help: "Total number of applied substate transitions",
			},
			[]string{"kind"},
		),
		Created: f.NewCounter(prometheus.CounterOpts{
			Name: "statestack_states_created_total",
			Help: "Total number of create hooks fired",
		}),
		Destroyed: f.NewCounter(prometheus.CounterOpts{
			Name: "statestack_states_destroyed_total",
			Help: "Total number of states destroyed",
		}),
		RootSwitches: f.NewCounter(prometheus.CounterOpts{
			Name: "statestack_root_switches_total",
			Help: "Total number of top-level state swaps",
		}),
		Frames: f.NewCounter(prometheus.CounterOpts{
			Name: "statestack_frames_total",
			Help: "Total number of update ticks",
		}),
		StackDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "statestack_active_depth",
			Help: "Number of states in the active chain",
		}),
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "statestack_update_duration_seconds",
			Help:    "Wall time spent in one update tick",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 8),
		}),
	}
}

// Transition records an applied substate transition. kind is "open",
// "close" or "replace".
func (m *Lifecycle) Transition(kind string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(kind).Inc()
}

func (m *Lifecycle) StateCreated() {
	if m == nil {
		return
	}
	m.Created.Inc()
}

func (m *Lifecycle) StateDestroyed() {
	if m == nil {
		return
	}
	m.Destroyed.Inc()
}

func (m *Lifecycle) RootSwitched() {
	if m == nil {
		return
	}
	m.RootSwitches.Inc()
}

// Frame records one update tick.
func (m *Lifecycle) Frame(depth int, seconds float64) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	m.StackDepth.Set(float64(depth))
	m.FrameDuration.Observe(seconds)
}
