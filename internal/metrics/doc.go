// Package metrics provides Prometheus instrumentation for the thumbnail
// service and CLI.
//
// All metrics are prefixed with "pdn_thumbnailer_" and registered on the
// default registry through promauto, so importing the package is enough to
// export them.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of requests being served
//
// ## Extraction Metrics
//
// Recorded by the extraction pipeline through ExtractionObserver:
//   - ExtractionsTotal: Counter by source (http, cli, shell) and result, where
//     result is "success" or the snake_case failure kind ("not_applicable",
//     "malformed_header", ...)
//   - ExtractionDuration: Histogram of whole-call duration by source
//   - ExtractionPhaseDuration: Histogram by phase (open, read_header,
//     decode_base64, decode_image, resize)
//   - EmbeddedThumbnailBytes: Histogram of decoded preview sizes
//   - ExtractionsInFlight: Gauge of extractions currently running
//   - ThumbnailEncodeDuration: Histogram of output encoding by format
//
// ## Filesystem Retry Metrics
//
// Recorded by the filesystem package through FilesystemObserver, labelled by
// operation ("stat", "open") and volume:
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures
//   - FilesystemStaleErrors
//   - FilesystemRetryDuration
//
// ## Scan Metrics
//
// Recorded by the scan package while listing documents:
//   - ScanFilesTotal: Counter of probed files by result (document, skipped, error)
//   - ScanDuration: Histogram of whole-scan duration
//   - ScanWorkers: Gauge of probe workers used by the last scan
//
// ## Memory Metrics
//
//   - MemoryUsageBytes: Gauge of heap allocation at the last check
//   - MemoryUsageRatio: Gauge of usage as ratio of the limit (0.0-1.0)
//   - MemoryPaused: Gauge set to 1 while work is refused for memory pressure
//   - MemoryGCPauses: Counter of times processing was paused
//
// ## Application Metrics
//
//   - AppInfo: Gauge set to 1 with version, commit and go_version labels
//   - AlphaClearEnabled: Gauge set to 1 when previews render on a
//     transparent background
//
// # Usage
//
//	metrics.SetAppInfo(version, commit, runtime.Version())
//	metrics.InitializeMetrics()
//	filesystem.SetObserver(metrics.NewFilesystemObserver())
//	extractor.Observer = metrics.NewExtractionObserver("http")
package metrics
