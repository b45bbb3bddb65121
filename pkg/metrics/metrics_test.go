package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg, "meeting-service")

	m.IncBooking("confirmed")
	m.IncBooking("confirmed")
	m.IncBooking("slot_taken")
	m.ObserveProviderCall("get_busy", "ok", 20*time.Millisecond)
	m.AddCompleted(3)
	m.AddCompleted(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues("slot_taken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("get_busy", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CompletedAppointments))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBooking("confirmed")
		m.ObserveHTTPRequest("GET", "/", "200", time.Second)
		m.ObserveDBQuery("exec", time.Second)
		m.SetDBPoolStats(1, 1, 0, 0)
		m.ObserveProviderCall("get_busy", "ok", time.Second)
		m.SetCircuitState("google", 2)
		m.AddCompleted(1)
	})
}
