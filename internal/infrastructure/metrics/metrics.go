package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notetaker",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notetaker",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Pipeline outcome counter
	PipelineMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notetaker",
			Subsystem: "pipeline",
			Name:      "messages_total",
			Help:      "Messages processed by the pipeline",
		},
		[]string{"category", "source", "degraded"},
	)

	// Idempotent replay counter
	IdempotentReplaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notetaker",
			Subsystem: "pipeline",
			Name:      "idempotent_replays_total",
			Help:      "Requests answered from stored idempotency records",
		},
	)

	// Artifact counter
	ArtifactsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notetaker",
			Subsystem: "pipeline",
			Name:      "artifacts_created_total",
			Help:      "Artifacts created by the pipeline",
		},
		[]string{"kind"},
	)

	// Reasoner call duration
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notetaker",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Reasoner chat completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"status"},
	)

	// Idempotency janitor counter
	JanitorDeletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notetaker",
			Subsystem: "janitor",
			Name:      "deletions_total",
			Help:      "Expired idempotency records pruned",
		},
	)

	// Rate limiter counter
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notetaker",
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordPipelineMessage records a completed pipeline run.
func RecordPipelineMessage(category, source string, degraded bool, notes, tasks int) {
	flag := "false"
	if degraded {
		flag = "true"
	}
	PipelineMessagesTotal.WithLabelValues(category, source, flag).Inc()
	if notes > 0 {
		ArtifactsCreatedTotal.WithLabelValues("note").Add(float64(notes))
	}
	if tasks > 0 {
		ArtifactsCreatedTotal.WithLabelValues("task").Add(float64(tasks))
	}
}

// RecordLLMCall records a reasoner call.
func RecordLLMCall(status string, durationSec float64) {
	LLMCallDuration.WithLabelValues(status).Observe(durationSec)
}
