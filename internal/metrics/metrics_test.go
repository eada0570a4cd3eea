package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric prometheus.Collector
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"ExtractionsTotal", ExtractionsTotal},
		{"ExtractionDuration", ExtractionDuration},
		{"ExtractionPhaseDuration", ExtractionPhaseDuration},
		{"EmbeddedThumbnailBytes", EmbeddedThumbnailBytes},
		{"ExtractionsInFlight", ExtractionsInFlight},
		{"ThumbnailEncodeDuration", ThumbnailEncodeDuration},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"FilesystemRetrySuccess", FilesystemRetrySuccess},
		{"FilesystemRetryFailures", FilesystemRetryFailures},
		{"FilesystemStaleErrors", FilesystemStaleErrors},
		{"FilesystemRetryDuration", FilesystemRetryDuration},
		{"ScanFilesTotal", ScanFilesTotal},
		{"ScanDuration", ScanDuration},
		{"ScanWorkers", ScanWorkers},
		{"MemoryUsageBytes", MemoryUsageBytes},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"MemoryGCPauses", MemoryGCPauses},
		{"AppInfo", AppInfo},
		{"AlphaClearEnabled", AlphaClearEnabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestMetricNamesPrefixed(t *testing.T) {
	ch := make(chan *prometheus.Desc, 8)
	go func() {
		ExtractionsTotal.Describe(ch)
		HTTPRequestsTotal.Describe(ch)
		close(ch)
	}()

	for desc := range ch {
		if !strings.Contains(desc.String(), `"pdn_thumbnailer_`) {
			t.Errorf("metric %s is not prefixed with pdn_thumbnailer_", desc)
		}
	}
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics()

	// Every source × result combination must be exported.
	want := len(ExtractionSources) * len(ExtractionResults)
	if got := testutil.CollectAndCount(ExtractionsTotal); got < want {
		t.Errorf("ExtractionsTotal series = %d, want at least %d", got, want)
	}
	if got := testutil.CollectAndCount(ExtractionPhaseDuration); got < len(ExtractionPhases) {
		t.Errorf("ExtractionPhaseDuration series = %d, want at least %d", got, len(ExtractionPhases))
	}
	if got := testutil.CollectAndCount(ScanFilesTotal); got < len(ScanResults) {
		t.Errorf("ScanFilesTotal series = %d, want at least %d", got, len(ScanResults))
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25")

	got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25"))
	if got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestSetAlphaClear(t *testing.T) {
	SetAlphaClear(true)
	if got := testutil.ToFloat64(AlphaClearEnabled); got != 1 {
		t.Errorf("AlphaClearEnabled = %v, want 1", got)
	}
	SetAlphaClear(false)
	if got := testutil.ToFloat64(AlphaClearEnabled); got != 0 {
		t.Errorf("AlphaClearEnabled = %v, want 0", got)
	}
}

func TestExtractionObserver(t *testing.T) {
	obs := NewExtractionObserver("cli")

	before := testutil.ToFloat64(ExtractionsTotal.WithLabelValues("cli", "success"))
	inFlight := testutil.ToFloat64(ExtractionsInFlight)

	obs.ExtractionStarted()
	if got := testutil.ToFloat64(ExtractionsInFlight); got != inFlight+1 {
		t.Errorf("in flight = %v, want %v", got, inFlight+1)
	}
	obs.PhaseFinished("decode_image", 0.002)
	obs.PayloadDecoded(4096)
	obs.ExtractionFinished("success", 0.01)

	if got := testutil.ToFloat64(ExtractionsInFlight); got != inFlight {
		t.Errorf("in flight after finish = %v, want %v", got, inFlight)
	}
	if got := testutil.ToFloat64(ExtractionsTotal.WithLabelValues("cli", "success")); got != before+1 {
		t.Errorf("ExtractionsTotal = %v, want %v", got, before+1)
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "documents"))
	obs.ObserveStaleError("open", "documents")
	obs.ObserveRetryAttempt("open", "documents")
	obs.ObserveRetrySuccess("open", "documents")
	obs.ObserveRetryFailure("open", "documents")
	obs.ObserveRetryDuration("open", "documents", 0.05)

	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "documents")); got != before+1 {
		t.Errorf("FilesystemStaleErrors = %v, want %v", got, before+1)
	}
}
