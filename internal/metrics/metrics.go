package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "remote_accounts"

// Message outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "messages_total",
			Help:      "Relayed messages by outcome.",
		},
		[]string{"source_chain", "outcome"},
	)
	deliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "delivery_duration_seconds",
			Help:      "Time spent executing a relayed message.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source_chain"},
	)
	instructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "instructions_total",
			Help:      "Processed instructions by kind and result.",
		},
		[]string{"kind", "success"},
	)
	sinkErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "results",
			Name:      "sink_errors_total",
			Help:      "Failed writes to result sinks.",
		},
		[]string{"sink"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, messages, deliveryDuration, instructions, sinkErrors)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordMessage(sourceChain, outcome string, duration time.Duration) {
	RegisterMetrics()
	messages.WithLabelValues(sourceChain, outcome).Inc()
	if outcome != OutcomeDuplicate {
		deliveryDuration.WithLabelValues(sourceChain).Observe(duration.Seconds())
	}
}

func RecordInstruction(kind string, success bool) {
	RegisterMetrics()
	instructions.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

func RecordSinkError(sink string) {
	RegisterMetrics()
	sinkErrors.WithLabelValues(sink).Inc()
}
