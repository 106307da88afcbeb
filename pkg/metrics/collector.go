package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests to external APIs labeled by service and outcome",
		},
		[]string{"service", "outcome"},
	)
	upstreamDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of requests to external APIs in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by kind and service",
		},
		[]string{"kind", "service"},
	)
	duplicateUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_updates_total",
			Help: "Telegram updates skipped because they were already handled",
		},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordUpstream tracks a single call to an external API.
func RecordUpstream(service, outcome string, duration time.Duration) {
	if service == "" {
		service = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}

	upstreamRequestsTotal.WithLabelValues(service, outcome).Inc()
	upstreamDurationSeconds.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordError increments error counters with metadata.
func RecordError(kind, service string) {
	if kind == "" {
		kind = "unknown"
	}
	if service == "" {
		service = "none"
	}

	errorsTotal.WithLabelValues(kind, service).Inc()
}

// RecordDuplicateUpdate counts an update suppressed by the idempotency guard.
func RecordDuplicateUpdate() {
	duplicateUpdatesTotal.Inc()
}
