package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/metrics"
)

var (
	// CacheAvailable reports whether the Redis backing store accepted
	// the startup connection (1) or the process runs degraded (0).
	CacheAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_available",
			Help:      "Whether the Redis backing store is available (1) or disabled (0)",
		},
	)

	// CacheErrors tracks soft cache operation failures after a
	// successful connect.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_errors_total",
			Help:      "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "incr"
	)
)
