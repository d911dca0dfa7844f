package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Messages entering the ingestion pipeline, by channel and outcome
	// (created, duplicate, rejected, error).
	MessagesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Total raw messages handled by the ingestion coordinator",
		},
		[]string{"source", "outcome"},
	)

	// Tasks created through normalization, by channel and initial status.
	TasksCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_created_total",
			Help: "Total tasks created by the normalizer",
		},
		[]string{"source", "status"},
	)

	TasksCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_completed_total",
			Help: "Total tasks marked completed",
		},
	)

	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Ingestion unit duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"source"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	WatchSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watch_subscribers",
			Help: "Currently connected live-view subscribers",
		},
	)
)
