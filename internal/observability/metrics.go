package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK           = "ok"
	ResultMalformed    = "malformed"
	ResultInsufficient = "insufficient_space"
	ResultNative       = "native_failure"
	ResultInvalid      = "invalid_request"
)

var (
	registerOnce sync.Once

	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sear",
			Subsystem: "decode",
			Name:      "total",
			Help:      "Extract requests by admin type and outcome.",
		},
		[]string{"admin_type", "result"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sear",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Post-processing time of one extract result buffer.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
		[]string{"admin_type"},
	)
	experimentalFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sear",
			Name:      "experimental_fields_total",
			Help:      "Fields surfaced under an experimental key because no mapping exists.",
		},
		[]string{"admin_type"},
	)
	bufferBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sear",
			Subsystem: "decode",
			Name:      "buffer_bytes_total",
			Help:      "Raw result buffer bytes handed to the decoder.",
		},
		[]string{"admin_type"},
	)
)

// Registry is the registry the sear collectors live in. The CLI gathers it
// for --metrics output.
var Registry = prometheus.NewRegistry()

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(decodes, decodeDuration, experimentalFields, bufferBytes)
	})
}

func RecordDecode(adminType, result string, size int, duration time.Duration) {
	RegisterMetrics()
	decodes.WithLabelValues(adminType, result).Inc()
	if result == ResultOK {
		decodeDuration.WithLabelValues(adminType).Observe(duration.Seconds())
	}
	if size > 0 {
		bufferBytes.WithLabelValues(adminType).Add(float64(size))
	}
}

func RecordExperimental(adminType string, n int) {
	RegisterMetrics()
	if n > 0 {
		experimentalFields.WithLabelValues(adminType).Add(float64(n))
	}
}
