// Package metrics exposes Prometheus instruments for the reservation
// engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gear",
		Subsystem: "reservation",
		Name:      "operations_total",
		Help:      "Reservation operations broken down by operation and result.",
	}, []string{"op", "result"})

	latency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gear",
		Subsystem: "reservation",
		Name:      "operation_latency_seconds",
		Help:      "Latency of reservation operations including lock wait and store I/O.",
		Buckets: []float64{
			0.0005, 0.001, 0.005, 0.01,
			0.05, 0.1, 0.25, 0.5,
			1, 2, 5,
		},
	}, []string{"op", "result"})

	rowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gear",
		Subsystem: "reservation",
		Name:      "rows_written_total",
		Help:      "Reservation rows appended or updated, by resulting status.",
	}, []string{"status"})
)

// ObserveOperation records one finished engine operation.
func ObserveOperation(op, result string, d time.Duration) {
	labels := prometheus.Labels{"op": op, "result": result}
	operations.With(labels).Inc()
	latency.With(labels).Observe(d.Seconds())
}

// AddRows counts n rows that reached status.
func AddRows(status string, n int) {
	rowsWritten.WithLabelValues(status).Add(float64(n))
}
