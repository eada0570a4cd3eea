package metrics

// Label values pre-populated by InitializeMetrics.
var (
	ExtractionSources = []string{"http", "cli", "shell"}
	ExtractionResults = []string{
		"success", "file_not_found", "access_denied", "truncated_file",
		"not_applicable", "malformed_header", "invalid_encoding",
		"image_decode_failed", "out_of_memory", "resize_failed",
		"out_of_range", "buffer_full", "io_error", "canceled",
	}
	ExtractionPhases = []string{"open", "read_header", "decode_base64", "decode_image", "resize"}
	OutputFormats    = []string{"png", "jpeg", "bmp", "dib"}
	ScanResults      = []string{"document", "skipped", "error"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, source := range ExtractionSources {
		ExtractionDuration.WithLabelValues(source)
		for _, result := range ExtractionResults {
			ExtractionsTotal.WithLabelValues(source, result)
		}
	}

	for _, phase := range ExtractionPhases {
		ExtractionPhaseDuration.WithLabelValues(phase)
	}

	for _, format := range OutputFormats {
		ThumbnailEncodeDuration.WithLabelValues(format)
	}

	for _, result := range ScanResults {
		ScanFilesTotal.WithLabelValues(result)
	}

	// --- Filesystem retry metrics (per retry-operation × volume) ---
	for _, op := range []string{"stat", "open"} {
		for _, vol := range []string{"documents", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
