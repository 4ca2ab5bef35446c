package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name
const Namespace = "rabble"

// Score update outcomes
const (
	OutcomeAccepted      = "accepted"
	OutcomeInvalid       = "invalid"
	OutcomeUsernameTaken = "username_taken"
	OutcomeError         = "error"
)

// Metrics holds the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ConnectedSessions prometheus.Gauge
	EventsReceived    *prometheus.CounterVec
	EventLatency      *prometheus.HistogramVec
	ScoreUpdates      *prometheus.CounterVec
	CodesUnlocked     *prometheus.CounterVec
	PoolExhausted     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectedSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connected_sessions",
			Help:      "Number of open realtime sessions",
		}),
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_received_total",
			Help:      "Total number of realtime events received",
		}, []string{"event"}),
		EventLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "event_latency_seconds",
			Help:      "Realtime event processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"event"}),
		ScoreUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "score_updates_total",
			Help:      "Score submissions by outcome",
		}, []string{"outcome"}),
		CodesUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "codes_unlocked_total",
			Help:      "Reward codes handed out per point level",
		}, []string{"level"}),
		PoolExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "code_pool_exhausted_total",
			Help:      "Allocation attempts that found no unused code",
		}, []string{"level"}),
	}

	reg.MustRegister(
		m.ConnectedSessions,
		m.EventsReceived,
		m.EventLatency,
		m.ScoreUpdates,
		m.CodesUnlocked,
		m.PoolExhausted,
	)

	return m
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ConnectedSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ConnectedSessions.Dec()
}

// ObserveEvent counts one handled event and its processing time
func (m *Metrics) ObserveEvent(event string, d time.Duration) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(event).Inc()
	m.EventLatency.WithLabelValues(event).Observe(d.Seconds())
}

func (m *Metrics) ScoreUpdate(outcome string) {
	if m == nil {
		return
	}
	m.ScoreUpdates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CodeUnlocked(level string) {
	if m == nil {
		return
	}
	m.CodesUnlocked.WithLabelValues(level).Inc()
}

func (m *Metrics) PoolExhaustedFor(level string) {
	if m == nil {
		return
	}
	m.PoolExhausted.WithLabelValues(level).Inc()
}
