package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_RecordsIntoRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg)

	p.Counter("workgate_tasks_admitted_total", WithDescription("admitted")).Add(3)
	p.Counter("workgate_tasks_admitted_total").Add(2)
	p.Counter("workgate_tasks_admitted_total").Add(-1) // ignored

	q := p.UpDownCounter("workgate_queue_length")
	q.Add(4)
	q.Add(-1)

	h := p.Histogram("workgate_task_duration_seconds", WithAttributes(map[string]string{"pool": "demo"}))
	h.Record(0.05)
	h.Record(0.2)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 3)

	byName := map[string]float64{}
	for _, mf := range mfs {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			byName[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			byName[mf.GetName()] = m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			byName[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
			require.Equal(t, "pool", m.GetLabel()[0].GetName())
			require.Equal(t, "demo", m.GetLabel()[0].GetValue())
		}
	}
	require.Equal(t, 5.0, byName["workgate_tasks_admitted_total"])
	require.Equal(t, 3.0, byName["workgate_queue_length"])
	require.Equal(t, 2.0, byName["workgate_task_duration_seconds"])
}

func TestPrometheusProvider_NoDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg)

	require.NotPanics(t, func() {
		p.Counter("c")
		p.Counter("c")
		p.UpDownCounter("g")
		p.UpDownCounter("g")
	})
}
