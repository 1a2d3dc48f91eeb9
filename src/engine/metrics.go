package engine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "photoshare"

// Metrics collects store operation counts and storage latencies.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations     *prometheus.CounterVec
	StorageSeconds *prometheus.HistogramVec
}

// NewMetrics creates the store collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Number of store operations by collection, operation and outcome.",
			},
			[]string{"collection", "operation", "outcome"},
		),
		StorageSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "storage_seconds",
				Help:      "Time spent reading and writing collection files.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{m.Operations, m.StorageSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeOperation(collection, operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(collection, operation, outcome(err)).Inc()
}

func (m *Metrics) observeStorage(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.StorageSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "error"
}
