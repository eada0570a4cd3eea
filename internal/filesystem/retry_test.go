package filesystem

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
	if config.VolumeResolver != nil {
		t.Error("VolumeResolver should be nil by default")
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "ESTALE error", err: syscall.ESTALE, want: true},
		{name: "wrapped ESTALE", err: &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, want: true},
		{name: "ENOENT error", err: syscall.ENOENT, want: false},
		{name: "generic error", err: os.ErrNotExist, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// VolumeResolver Tests
// =============================================================================

func TestVolumeResolver_Resolve(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"documents": "/documents",
		"archive":   "/documents/archive",
		"root":      "/",
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "documents root", path: "/documents", want: "documents"},
		{name: "document file", path: "/documents/art/poster.pdn", want: "documents"},
		{name: "longest prefix wins", path: "/documents/archive/2019/old.pdn", want: "archive"},
		{name: "archive root", path: "/documents/archive", want: "archive"},
		{name: "sibling with shared prefix", path: "/documents-old/a.pdn", want: "root"},
		{name: "falls to root", path: "/etc/hosts", want: "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vr.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve_Unknown(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{"documents": "/documents"})
	if got := vr.Resolve("/tmp/something"); got != "unknown" {
		t.Errorf("Resolve() = %q, want unknown", got)
	}

	var nilResolver *VolumeResolver
	if got := nilResolver.Resolve("/documents/a.pdn"); got != "unknown" {
		t.Errorf("nil resolver Resolve() = %q, want unknown", got)
	}
}

func TestRetryConfig_ResolveVolume(t *testing.T) {
	original := defaultResolver
	defer func() { defaultResolver = original }()

	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"default-docs": "/documents"}))

	config := RetryConfig{}
	if got := config.resolveVolume("/documents/a.pdn"); got != "default-docs" {
		t.Errorf("resolveVolume() = %q, want default-docs", got)
	}

	config.VolumeResolver = NewVolumeResolver(map[string]string{"override-docs": "/documents"})
	if got := config.resolveVolume("/documents/a.pdn"); got != "override-docs" {
		t.Errorf("resolveVolume() = %q, want override-docs", got)
	}
}

// =============================================================================
// Retry Tests
// =============================================================================

type recordingObserver struct {
	mu       sync.Mutex
	attempts int
	success  int
	failures int
	stale    int
	duration int
}

func (r *recordingObserver) ObserveRetryAttempt(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
}

func (r *recordingObserver) ObserveRetrySuccess(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
}

func (r *recordingObserver) ObserveRetryFailure(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *recordingObserver) ObserveRetryDuration(string, string, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duration++
}

func (r *recordingObserver) ObserveStaleError(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale++
}

func withObserver(t *testing.T) *recordingObserver {
	t.Helper()
	rec := &recordingObserver{}
	SetObserver(rec)
	t.Cleanup(func() { SetObserver(nil) })
	return rec
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestWithRetry_RecoversFromStaleHandle(t *testing.T) {
	rec := withObserver(t)

	calls := 0
	err := withRetry("open", "/documents/a.pdn", fastRetry(), func() error {
		calls++
		if calls < 3 {
			return &os.PathError{Op: "open", Path: "/documents/a.pdn", Err: syscall.ESTALE}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if rec.stale != 2 || rec.attempts != 2 || rec.success != 1 || rec.failures != 0 || rec.duration != 1 {
		t.Errorf("observer = %+v", rec)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	rec := withObserver(t)

	calls := 0
	err := withRetry("stat", "/documents/a.pdn", fastRetry(), func() error {
		calls++
		return syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("withRetry() error = %v, want ESTALE", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (1 + MaxRetries)", calls)
	}
	if rec.failures != 1 || rec.attempts != 3 || rec.stale != 4 {
		t.Errorf("observer = %+v", rec)
	}
}

func TestWithRetry_OtherErrorsFailFast(t *testing.T) {
	rec := withObserver(t)

	calls := 0
	err := withRetry("open", "/x", fastRetry(), func() error {
		calls++
		return os.ErrPermission
	})

	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("withRetry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if rec.stale != 0 || rec.failures != 0 || rec.duration != 1 {
		t.Errorf("observer = %+v", rec)
	}
}

func TestStatWithRetry(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.pdn")
	if err := os.WriteFile(testFile, []byte("PDN3"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	info, err := StatWithRetry(testFile, fastRetry())
	if err != nil {
		t.Fatalf("StatWithRetry() error = %v", err)
	}
	if info.Size() != 4 {
		t.Errorf("Size() = %d, want 4", info.Size())
	}

	info, err = StatWithRetry(filepath.Join(tmpDir, "missing.pdn"), fastRetry())
	if !os.IsNotExist(err) || info != nil {
		t.Errorf("StatWithRetry(missing) = %v, %v; want nil, not-exist", info, err)
	}
}

func TestOpener(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.pdn")
	if err := os.WriteFile(testFile, []byte("PDN3 content"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	opener := Opener{Retry: fastRetry()}

	rc, err := opener.Open(testFile)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, err := io.ReadAll(rc)
	if closeErr := rc.Close(); closeErr != nil {
		t.Errorf("Close() error = %v", closeErr)
	}
	if err != nil || string(data) != "PDN3 content" {
		t.Errorf("read = %q, %v", data, err)
	}

	rc, err = opener.Open(filepath.Join(tmpDir, "missing.pdn"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want ErrNotExist", err)
	}
	if rc != nil {
		t.Error("Open(missing) returned non-nil reader")
	}
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{name: "simple", rel: "a.pdn", want: filepath.Join(root, "a.pdn")},
		{name: "nested", rel: "art/2024/a.pdn", want: filepath.Join(root, "art", "2024", "a.pdn")},
		{name: "leading slash", rel: "/a.pdn", want: filepath.Join(root, "a.pdn")},
		{name: "dot dot clamped to root", rel: "../../etc/passwd", want: filepath.Join(root, "etc", "passwd")},
		{name: "inner dot dot", rel: "art/../a.pdn", want: filepath.Join(root, "a.pdn")},
		{name: "empty is root", rel: "", want: root},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(root, tt.rel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkVolumeResolver_Resolve(b *testing.B) {
	vr := NewVolumeResolver(map[string]string{
		"documents": "/documents",
		"archive":   "/documents/archive",
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vr.Resolve("/documents/art/2024/poster.pdn")
	}
}

func BenchmarkOpenWithRetry_Success(b *testing.B) {
	tmpDir := b.TempDir()
	testFile := filepath.Join(tmpDir, "bench.pdn")
	if err := os.WriteFile(testFile, []byte("PDN3"), 0o644); err != nil {
		b.Fatal(err)
	}
	config := DefaultRetryConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := OpenWithRetry(testFile, config)
		if err != nil {
			b.Fatal(err)
		}
		f.Close()
	}
}
