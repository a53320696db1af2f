package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for protocol state transitions.
// Tracks transition counts by action and outcome, and entry-point durations.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance with all protocol metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bit_holdings_transitions_total",
			Help: "Total number of state transitions by action and outcome",
		}, []string{"action", "outcome"}),
		TransitionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bit_holdings_transition_duration_seconds",
			Help:    "Duration of protocol entry points",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"action"}),
	}
}

// ObserveTransition records one entry-point invocation. Call with time.Now()
// taken at the start of the operation; outcome is derived from err.
func (m *Metrics) ObserveTransition(action string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Transitions.WithLabelValues(action, outcome).Inc()
	m.TransitionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}
