package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kumarsatyam444/Learning-Management-System/pkg/metrics"
)

var (
	// JobsTotal counts transcript job attempts by terminal outcome of
	// the attempt ("completed", "failed", "rejected").
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "transcript_jobs_total",
			Help:      "Total transcript job attempts by outcome",
		},
		[]string{"outcome"},
	)

	// EnqueueSkipped counts jobs dropped because the queue backing
	// store was unavailable or the enqueue failed.
	EnqueueSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "transcript_enqueue_skipped_total",
			Help:      "Total transcript jobs skipped due to queue unavailability",
		},
	)
)
