package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gallerytab"

// Registry is the Prometheus registry for all application metrics, exposed
// at /metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes version information as labels (value is always 1).
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// FetchAttemptsTotal counts pipeline attempts by source and outcome.
// Outcomes: accepted, no_image, transport, status, malformed.
var FetchAttemptsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "Total artwork fetch attempts by source and outcome",
	},
	[]string{"source", "outcome"},
)

// FetchAttemptDuration tracks per-attempt latency, including the dependent
// artist fetch when a source performs one.
var FetchAttemptDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_attempt_duration_seconds",
		Help:      "Artwork fetch attempt latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"source"},
)

// ArtworksAcceptedTotal counts artworks that passed validation and were
// handed to history and presentation.
var ArtworksAcceptedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artworks_accepted_total",
		Help:      "Total artworks accepted for display",
	},
	[]string{"source"},
)

// PipelineExhaustedTotal counts pipeline runs that gave up after the retry
// cap.
var PipelineExhaustedTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_exhausted_total",
		Help:      "Total pipeline runs that hit the retry cap without an artwork",
	},
)

// Init registers runtime collectors and records version info.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
