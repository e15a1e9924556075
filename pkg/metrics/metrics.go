package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure|locked).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedesk_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ActivityEvents counts appended activity events by action.
	ActivityEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitedesk_activity_events_total",
			Help: "Total number of activity events appended",
		},
		[]string{"action"},
	)

	// RealtimeClients tracks currently connected realtime subscribers.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitedesk_realtime_clients",
			Help: "Number of connected realtime clients",
		},
	)

	// APILatency observes request durations labelled by method, path and status.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitedesk_api_request_duration_seconds",
			Help:    "API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
