package metrics

import (
	"pdn-thumbnailer/internal/filesystem"
)

// filesystemObserver implements filesystem.Observer using the Prometheus
// metrics declared in this package.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer that records filesystem retry
// metrics.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveRetryAttempt(retryOp, volume string) {
	FilesystemRetryAttempts.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(retryOp, volume string) {
	FilesystemRetrySuccess.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(retryOp, volume string) {
	FilesystemRetryFailures.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryDuration(retryOp, volume string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(retryOp, volume).Observe(durationSeconds)
}

func (o *filesystemObserver) ObserveStaleError(retryOp, volume string) {
	FilesystemStaleErrors.WithLabelValues(retryOp, volume).Inc()
}

// ExtractionObserver records extraction pipeline metrics for one source.
// Its method set matches the observer interface the extract package
// declares.
type ExtractionObserver struct {
	source string
}

// NewExtractionObserver creates an observer labelling extractions with
// source ("http", "cli" or "shell").
func NewExtractionObserver(source string) *ExtractionObserver {
	return &ExtractionObserver{source: source}
}

// ExtractionStarted marks an extraction as in flight.
func (o *ExtractionObserver) ExtractionStarted() {
	ExtractionsInFlight.Inc()
}

// ExtractionFinished records the outcome of one extraction.
func (o *ExtractionObserver) ExtractionFinished(result string, durationSeconds float64) {
	ExtractionsInFlight.Dec()
	ExtractionsTotal.WithLabelValues(o.source, result).Inc()
	ExtractionDuration.WithLabelValues(o.source).Observe(durationSeconds)
}

// PhaseFinished records the duration of one pipeline phase.
func (o *ExtractionObserver) PhaseFinished(phase string, durationSeconds float64) {
	ExtractionPhaseDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// PayloadDecoded records the size of a decoded embedded thumbnail.
func (o *ExtractionObserver) PayloadDecoded(n int) {
	EmbeddedThumbnailBytes.Observe(float64(n))
}
