package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SecurityEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securebank_security_events_total",
			Help: "Security log entries recorded, by event type.",
		},
		[]string{"event_type"},
	)
	Lockouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securebank_lockouts_total",
			Help: "Lockouts engaged, by the step that triggered them.",
		},
		[]string{"step"},
	)
	SessionTerminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securebank_session_terminations_total",
			Help: "Sessions ended, by logout reason.",
		},
		[]string{"reason"},
	)
	TransferDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securebank_transfer_decisions_total",
			Help: "Transfer outcomes: completed, pending_approval, denied, invalid.",
		},
		[]string{"outcome"},
	)
	AuditPublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "securebank_audit_publish_failures_total",
			Help: "Failed deliveries of security events to an audit sink.",
		},
		[]string{"sink"},
	)
	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "securebank_audit_dropped_total",
			Help: "Security events dropped because the audit queue was full.",
		},
	)
)

func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCount,
		RequestDuration,
		SecurityEvents,
		Lockouts,
		SessionTerminations,
		TransferDecisions,
		AuditPublishFailures,
		AuditDropped,
	)
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
