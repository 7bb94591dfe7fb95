package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mongoapi", Name: "operations_total", Help: "Collection operations by operation and envelope status."},
		[]string{"operation", "status"},
	)
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "mongoapi", Name: "operation_duration_seconds", Help: "Time spent in collection operations, store call included.", Buckets: prometheus.DefBuckets},
		[]string{"operation"},
	)
	AuthRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "mongoapi", Name: "auth_rejected_total", Help: "Requests rejected for lacking a valid API key."},
	)
)

// Status label values for Operations.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(OperationDuration)
	reg.MustRegister(AuthRejected)
}
