package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSentCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wacrm",
			Name:      "messages_sent_total",
			Help:      "Total messages delivered by the dispatcher.",
		},
	)

	MessagesFailedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wacrm",
			Name:      "messages_failed_total",
			Help:      "Total message sends that failed.",
		},
	)

	BatchesDispatchedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wacrm",
			Name:      "batches_dispatched_total",
			Help:      "Total dispatch cycles finished, by final batch status.",
		},
		[]string{"status"}, // "completed" or "failed"
	)

	DispatchCycleDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wacrm",
			Name:      "dispatch_cycle_duration_seconds",
			Help:      "Duration of one claim-drain-finalize cycle.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	StaleBatchesReleasedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wacrm",
			Name:      "stale_batches_released_total",
			Help:      "Batches returned to pending by the recovery sweep.",
		},
	)
)
