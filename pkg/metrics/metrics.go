package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records credential checks by flow (signup|login) and result (success|failure|disabled).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notesd_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"flow", "result"},
	)

	// SessionChecks counts session lifecycle evaluations by outcome
	// (authenticated|renewed|rejected|error).
	SessionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notesd_session_checks_total",
			Help: "Total number of session lifecycle evaluations",
		},
		[]string{"outcome"},
	)

	// SessionsIssued counts sessions created, labelled by reason (login|signup|rotation).
	SessionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notesd_sessions_issued_total",
			Help: "Total number of sessions issued",
		},
		[]string{"reason"},
	)

	// SessionsRevoked counts sessions destroyed, labelled by reason.
	SessionsRevoked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notesd_sessions_revoked_total",
			Help: "Total number of sessions revoked",
		},
		[]string{"reason"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notesd_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notesd_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
