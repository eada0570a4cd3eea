package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/pdntest"
)

// =============================================================================
// Fixtures
// =============================================================================

func writeDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pdntest.Write(t, dir, "wide.pdn", pdntest.Document(t, pdntest.Solid(1200, 600, color.NRGBA{G: 200, A: 255})))
	pdntest.Write(t, dir, "tall.pdn", pdntest.Document(t, pdntest.Solid(30, 90, color.NRGBA{R: 10, A: 255})))
	pdntest.Write(t, dir, "photo.pdn", []byte("\xff\xd8\xff\xe0 not a document"))
	return dir
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func decodeSize(t *testing.T, r io.Reader) image.Point {
	t.Helper()
	img, err := png.Decode(r)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img.Bounds().Size()
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)

	for _, want := range []string{"extract", "info", "batch", "PDNTHUMB_WORKERS"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage does not mention %q", want)
		}
	}
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"extract", "extract"},
		{"batch-all", "batch-all"},
		{"rm -rf /", "rm_-rf__"},
		{"\x1b[31mred", "__31mred"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.input); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRequestedSize(t *testing.T) {
	tests := []struct {
		name                          string
		width, height                 int
		widthSet, heightSet, original bool
		want                          media.RequestedSize
	}{
		{"default", 0, 0, false, false, false, media.Square(defaultSize)},
		{"original wins", 10, 10, true, true, true, media.OriginalSize},
		{"both", 100, 50, true, true, false, media.RequestedSize{Width: 100, Height: 50}},
		{"width only", 64, 0, true, false, false, media.Square(64)},
		{"height only", 0, 32, false, true, false, media.Square(32)},
		{"explicit zero", 0, 0, true, false, false, media.Square(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requestedSize(tt.width, tt.height, tt.widthSet, tt.heightSet, tt.original)
			if got != tt.want {
				t.Errorf("requestedSize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanBatch(t *testing.T) {
	jobs := planBatch([]string{"a/cat.pdn", "b/dog.pdn", "c/cat.pdn"}, "out", media.FormatJPEG)

	if jobs[0].target != filepath.Join("out", "cat.jpg") || jobs[0].err != nil {
		t.Errorf("job 0 = %+v", jobs[0])
	}
	if jobs[1].target != filepath.Join("out", "dog.jpg") || jobs[1].err != nil {
		t.Errorf("job 1 = %+v", jobs[1])
	}
	if jobs[2].err == nil {
		t.Error("duplicate output name was not rejected")
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "Usage:"},
		{"unknown command", []string{"conv;ert"}, "Unknown command: conv_ert"},
		{"bad decoder", []string{"-decoder", "magick", "info", "x"}, "invalid -decoder"},
		{"bad platform", []string{"-platform", "six", "info", "x"}, "invalid -platform"},
		{"bad interpolation", []string{"-interpolation", "lanczos", "info", "x"}, "invalid -interpolation"},
		{"extract without document", []string{"extract"}, "exactly one document"},
		{"extract bad format", []string{"extract", "-format", "tga", "x.pdn"}, "unsupported"},
		{"batch without documents", []string{"batch"}, "at least one document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != exitUsage {
				t.Errorf("exit code = %d, want %d", code, exitUsage)
			}
			if !strings.Contains(strings.ToLower(stderr), strings.ToLower(tt.want)) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.want)
			}
		})
	}
}

func TestExtractToStdout(t *testing.T) {
	dir := writeDocs(t)

	tests := []struct {
		name string
		args []string
		want image.Point
	}{
		{"default box", nil, image.Pt(256, 128)},
		{"width only", []string{"-w", "100"}, image.Pt(100, 50)},
		{"both", []string{"-w", "300", "-h", "30"}, image.Pt(30, 15)},
		{"original", []string{"-original"}, image.Pt(1200, 600)},
		{"non-positive means original", []string{"-w", "0"}, image.Pt(1200, 600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"extract"}, tt.args...)
			args = append(args, filepath.Join(dir, "wide.pdn"))

			code, stdout, stderr := runCLI(t, args...)
			if code != exitOK {
				t.Fatalf("exit code = %d, stderr: %s", code, stderr)
			}
			if got := decodeSize(t, strings.NewReader(stdout)); got != tt.want {
				t.Errorf("size = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractToFile(t *testing.T) {
	dir := writeDocs(t)
	out := filepath.Join(t.TempDir(), "tall.bmp")

	code, stdout, stderr := runCLI(t, "extract", "-h", "45", "-format", "bmp", "-o", out, filepath.Join(dir, "tall.pdn"))
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("unexpected stdout: %q", stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("BM")) {
		t.Errorf("output is not a BMP: % x", data[:min(len(data), 8)])
	}
}

func TestExtractFailures(t *testing.T) {
	dir := writeDocs(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"not a document", filepath.Join(dir, "photo.pdn"), "not a Paint.NET document"},
		{"missing", filepath.Join(dir, "missing.pdn"), "FileNotFound"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "extract", tt.path)
			if code != exitFail {
				t.Errorf("exit code = %d, want %d", code, exitFail)
			}
			if stdout != "" {
				t.Error("failed extraction wrote to stdout")
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.want)
			}
		})
	}
}

func TestExtractRefusesTerminal(t *testing.T) {
	dir := writeDocs(t)

	var out, errOut bytes.Buffer
	a := &app{
		stdout:     &out,
		stderr:     &errOut,
		isTerminal: func(io.Writer) bool { return true },
		extractor:  &extract.Extractor{},
	}

	if code := a.extract(context.Background(), []string{filepath.Join(dir, "wide.pdn")}); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
	if out.Len() != 0 {
		t.Error("image data written to a terminal")
	}
	if !strings.Contains(errOut.String(), "terminal") {
		t.Errorf("stderr = %q", errOut.String())
	}

	// An explicit output file is fine even when stdout is a terminal
	target := filepath.Join(t.TempDir(), "wide.png")
	if code := a.extract(context.Background(), []string{"-o", target, filepath.Join(dir, "wide.pdn")}); code != exitOK {
		t.Errorf("exit code with -o = %d, stderr: %s", code, errOut.String())
	}
}

func TestInfo(t *testing.T) {
	dir := writeDocs(t)
	path := filepath.Join(dir, "tall.pdn")

	code, stdout, stderr := runCLI(t, "info", path)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	var info documentInfo
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if info.Path != path || info.Width != 30 || info.Height != 90 || info.Layers != 1 {
		t.Errorf("info = %+v", info)
	}
	if info.ThumbnailFormat != "png" || info.EncodedBytes == 0 || info.BodyEncoding != "raw" {
		t.Errorf("info = %+v", info)
	}
	if st, _ := os.Stat(path); info.FileSize != st.Size() {
		t.Errorf("fileSize = %d, want %d", info.FileSize, st.Size())
	}
}

func TestInfoNotADocument(t *testing.T) {
	dir := writeDocs(t)

	code, _, stderr := runCLI(t, "info", filepath.Join(dir, "photo.pdn"))
	if code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(stderr, "not a Paint.NET document") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBatch(t *testing.T) {
	dir := writeDocs(t)
	out := filepath.Join(t.TempDir(), "thumbs")

	code, stdout, stderr := runCLI(t, "batch", "-size", "64", "-out", out, "-j", "2",
		filepath.Join(dir, "wide.pdn"), filepath.Join(dir, "tall.pdn"), filepath.Join(dir, "photo.pdn"))
	if code != exitOK {
		t.Fatalf("exit code = %d, stdout: %s stderr: %s", code, stdout, stderr)
	}

	want := map[string]image.Point{
		"wide.png": image.Pt(64, 32),
		"tall.png": image.Pt(21, 64),
	}
	for name, size := range want {
		f, err := os.Open(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		if got := decodeSize(t, f); got != size {
			t.Errorf("%s size = %v, want %v", name, got, size)
		}
		f.Close()
	}

	if _, err := os.Stat(filepath.Join(out, "photo.png")); !os.IsNotExist(err) {
		t.Error("skipped document produced an output file")
	}
	if !strings.Contains(stdout, "skip") || !strings.Contains(stderr, "2 written, 1 skipped, 0 failed") {
		t.Errorf("stdout %q stderr %q", stdout, stderr)
	}
}

func TestBatchFailureSetsExitCode(t *testing.T) {
	dir := writeDocs(t)

	code, stdout, _ := runCLI(t, "batch", "-out", t.TempDir(),
		filepath.Join(dir, "wide.pdn"), filepath.Join(dir, "missing.pdn"))
	if code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
	if !strings.Contains(stdout, "fail  "+filepath.Join(dir, "missing.pdn")) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestBatchCanceled(t *testing.T) {
	dir := writeDocs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	code := run(ctx, []string{"batch", "-out", t.TempDir(), filepath.Join(dir, "wide.pdn")}, &out, &errOut)
	if code != exitFail {
		t.Errorf("exit code = %d, want %d", code, exitFail)
	}
}

func TestMetricsFile(t *testing.T) {
	dir := writeDocs(t)
	metricsPath := filepath.Join(t.TempDir(), "pdnthumb.prom")

	code, _, stderr := runCLI(t, "-metrics-file", metricsPath, "extract", "-o", filepath.Join(t.TempDir(), "x.png"), filepath.Join(dir, "wide.pdn"))
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), `pdn_thumbnailer_extractions_total{result="success",source="cli"}`) {
		t.Errorf("metrics file lacks the CLI extraction counter:\n%s", data)
	}
}

func TestBatchDirectory(t *testing.T) {
	dir := writeDocs(t)
	pdntest.Write(t, dir, "nested/deep.pdn", pdntest.Document(t, pdntest.Solid(8, 8, color.White)))
	out := t.TempDir()

	code, stdout, stderr := runCLI(t, "batch", "-size", "16", "-out", out, dir)
	if code != exitOK {
		t.Fatalf("exit code = %d, stdout: %s stderr: %s", code, stdout, stderr)
	}

	// photo.pdn fails the signature probe during the scan, so it is never
	// offered to the extractor
	for _, name := range []string{"deep.png", "tall.png", "wide.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(stderr, "3 written, 0 skipped, 0 failed") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := writeDocs(t)
	pdntest.Write(t, dir, "renamed.bin", pdntest.Document(t, pdntest.Solid(2, 2, color.White)))

	paths, err := expandPaths(context.Background(), []string{dir, "loose.pdn"}, false)
	if err != nil {
		t.Fatalf("expandPaths: %v", err)
	}
	want := []string{filepath.Join(dir, "tall.pdn"), filepath.Join(dir, "wide.pdn"), "loose.pdn"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	all, err := expandPaths(context.Background(), []string{dir}, true)
	if err != nil {
		t.Fatalf("expandPaths: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("with -all: %v", all)
	}
}
