package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pdn_thumbnailer"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Extraction metrics
var (
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_extractions_total",
			Help: "Total thumbnail extractions by source and result",
		},
		[]string{"source", "result"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_extraction_duration_seconds",
			Help:    "Duration of whole thumbnail extractions in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	ExtractionPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_extraction_phase_duration_seconds",
			Help:    "Duration of individual extraction phases in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"phase"},
	)

	EmbeddedThumbnailBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    namespace + "_embedded_thumbnail_bytes",
			Help:    "Size of decoded embedded thumbnails in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12),
		},
	)

	ExtractionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_extractions_in_flight",
			Help: "Number of thumbnail extractions currently running",
		},
	)

	ThumbnailEncodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_thumbnail_encode_duration_seconds",
			Help:    "Time spent encoding rendered thumbnails by output format",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"format"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_filesystem_retry_attempts_total",
			Help: "Retries issued after NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_filesystem_retry_failures_total",
			Help: "Operations that still failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_filesystem_stale_errors_total",
			Help: "NFS stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_filesystem_retry_duration_seconds",
			Help:    "Total time spent in retried filesystem operations",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Document scan metrics
var (
	ScanFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_scan_files_total",
			Help: "Files examined while scanning for documents, by result",
		},
		[]string{"result"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    namespace + "_scan_duration_seconds",
			Help:    "Duration of document directory scans in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
	)

	ScanWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_scan_workers",
			Help: "Number of probe workers used by the last scan",
		},
	)
)

// Memory metrics
var (
	MemoryUsageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_memory_usage_bytes",
			Help: "Heap bytes allocated at the last memory check",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_memory_usage_ratio",
			Help: "Memory usage as a ratio of the configured limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_memory_paused",
			Help: "Whether work is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: namespace + "_memory_gc_pauses_total",
			Help: "Times processing was paused for memory pressure",
		},
	)
)

// Application metrics
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)

	AlphaClearEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: namespace + "_alpha_clear_enabled",
			Help: "Whether thumbnails are rendered on a transparent background (1) or white (0)",
		},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// SetAlphaClear records the background mode chosen at startup.
func SetAlphaClear(enabled bool) {
	if enabled {
		AlphaClearEnabled.Set(1)
		return
	}
	AlphaClearEnabled.Set(0)
}
