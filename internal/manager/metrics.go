package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	preparesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mtbench",
			Subsystem: "translator",
			Name:      "prepares_total",
			Help:      "Translator preparations by result",
		},
		[]string{"result"},
	)

	evictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mtbench",
			Subsystem: "translator",
			Name:      "evictions_total",
			Help:      "Idle translators dropped to honor the instance cap",
		},
	)

	translateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mtbench",
			Subsystem: "translate",
			Name:      "requests_total",
			Help:      "Translate calls by mode (online/offline) and result",
		},
		[]string{"mode", "result"},
	)

	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mtbench",
			Subsystem: "translate",
			Name:      "batch_size",
			Help:      "Sentences per generate call",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mtbench",
			Subsystem: "translate",
			Name:      "batch_duration_seconds",
			Help:      "Encode+generate+decode time per batch",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(preparesTotal, evictionsTotal, translateRequestsTotal, batchSize, batchDuration)
}

func observeBatch(size int, dur time.Duration) {
	batchSize.Observe(float64(size))
	batchDuration.Observe(dur.Seconds())
}
