package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_created_total",
			Help: "Number of checkout sessions accepted by the payment provider",
		},
		[]string{"class_id"},
	)

	SessionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_session_failures_total",
			Help: "Number of checkout session requests that failed",
		},
		[]string{"reason"},
	)

	IdempotentReplays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_idempotent_replays_total",
			Help: "Number of checkout sessions served from the idempotency cache",
		},
	)

	ProviderLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_provider_request_duration_seconds",
			Help:    "Time taken by the payment provider to create a session",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_events_published_total",
			Help: "Number of checkout events handed to Kafka",
		},
		[]string{"status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SessionsCreated,
			SessionFailures,
			IdempotentReplays,
			ProviderLatency,
			EventsPublished,
			HTTPRequestDuration,
		)
	})
}
