package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.ObserveEvent("scoreUpdate", 5*time.Millisecond)
	m.ScoreUpdate(OutcomeAccepted)
	m.CodeUnlocked("20")
	m.PoolExhaustedFor("1000")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConnectedSessions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsReceived.WithLabelValues("scoreUpdate")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ScoreUpdates.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CodesUnlocked.WithLabelValues("20")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PoolExhausted.WithLabelValues("1000")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "rabble_code_pool_exhausted_total")
	assert.Contains(t, names, "rabble_connected_sessions")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionOpened()
		m.SessionClosed()
		m.ObserveEvent("leaderboard", time.Millisecond)
		m.ScoreUpdate(OutcomeError)
		m.CodeUnlocked("20")
		m.PoolExhaustedFor("20")
	})
}
