package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestObserveOperation_IncrementsCounter(t *testing.T) {
	labels := map[string]string{"op": "metrics_test", "result": "ok"}
	before := counterValue(t, "gear_reservation_operations_total", labels)

	ObserveOperation("metrics_test", "ok", 3*time.Millisecond)
	ObserveOperation("metrics_test", "ok", 4*time.Millisecond)

	require.Equal(t, before+2, counterValue(t, "gear_reservation_operations_total", labels))
}

func TestAddRows(t *testing.T) {
	labels := map[string]string{"status": "METRICS_TEST"}
	before := counterValue(t, "gear_reservation_rows_written_total", labels)
	AddRows("METRICS_TEST", 3)
	require.Equal(t, before+3, counterValue(t, "gear_reservation_rows_written_total", labels))
}
