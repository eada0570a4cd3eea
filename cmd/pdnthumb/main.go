package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/memory"
	"pdn-thumbnailer/internal/metrics"
	"pdn-thumbnailer/internal/platform"
	"pdn-thumbnailer/internal/scan"
	"pdn-thumbnailer/internal/shell"
	"pdn-thumbnailer/internal/startup"
	"pdn-thumbnailer/internal/transcoder"
	"pdn-thumbnailer/internal/workers"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2

	// Box edge used when a command is given no size
	defaultSize = 256
)

// errTerminal refuses to dump binary image data into an interactive shell.
var errTerminal = errors.New("refusing to write image data to a terminal; use -o FILE or redirect stdout")

func main() {
	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// app carries what every command shares.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func(io.Writer) bool
	extractor  *extract.Extractor
}

// run parses global flags, builds the extractor and dispatches the command.
// It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("pdnthumb", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { printUsage(stderr) }

	verbose := global.Bool("v", false, "debug logging")
	platformVersion := global.String("platform", "", "render for this platform version instead of the running one")
	decoderName := global.String("decoder", startup.DecoderStd, "pixel decoder: std or vips")
	interpolation := global.String("interpolation", media.InterpolationBicubic, "scaler: bicubic, bilinear, approx-bilinear or nearest")
	metricsFile := global.String("metrics-file", "", "write extraction metrics in Prometheus text format to this file")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}
	if global.NArg() == 0 {
		printUsage(stderr)
		return exitUsage
	}

	x, err := newExtractor(*platformVersion, *decoderName, *interpolation)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer media.ShutdownVips()

	a := &app{
		stdout:     stdout,
		stderr:     stderr,
		isTerminal: isTerminal,
		extractor:  x,
	}

	command, rest := global.Arg(0), global.Args()[1:]
	var code int
	switch command {
	case "extract":
		code = a.extract(ctx, rest)
	case "info":
		code = a.info(rest)
	case "batch":
		code = a.batch(ctx, rest)
	case "help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(stderr)
		return exitUsage
	}

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, prometheus.DefaultGatherer); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to write metrics: %v\n", err)
		}
	}
	return code
}

// newExtractor configures the pipeline the way the service does, with
// metrics attributed to the command line.
func newExtractor(platformVersion, decoderName, interpolation string) (*extract.Extractor, error) {
	host := platform.Current()
	if platformVersion != "" {
		var err error
		if host, err = platform.Override(host.OS, platformVersion); err != nil {
			return nil, fmt.Errorf("invalid -platform: %w", err)
		}
	}

	interpolator, err := media.ParseInterpolation(interpolation)
	if err != nil {
		return nil, fmt.Errorf("invalid -interpolation: %w", err)
	}

	var decoder media.Decoder
	switch strings.ToLower(decoderName) {
	case startup.DecoderStd:
		decoder = media.StdDecoder{}
	case startup.DecoderVips:
		if err := media.InitVips(); err != nil {
			return nil, fmt.Errorf("libvips: %w", err)
		}
		decoder = media.VipsDecoder{}
	default:
		return nil, fmt.Errorf("invalid -decoder %q: must be %q or %q", decoderName, startup.DecoderStd, startup.DecoderVips)
	}

	logging.Debug("Rendering for %s", host)
	return &extract.Extractor{
		Decoder: decoder,
		Resizer: media.Resizer{
			SupportsAlphaClear: host.SupportsAlphaClear(platform.AlphaClearMinVersion),
			Interpolator:       interpolator,
		},
		Observer: metrics.NewExtractionObserver("cli"),
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Paint.NET Thumbnail Extractor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: pdnthumb [-v] [-platform VERSION] [-decoder std|vips] [-metrics-file FILE] <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  extract [-w N] [-h N] [-original] [-format F] [-o FILE] DOC")
	fmt.Fprintln(w, "          Write the embedded thumbnail of DOC")
	fmt.Fprintln(w, "  info DOC")
	fmt.Fprintln(w, "          Print what the document header declares, as JSON")
	fmt.Fprintln(w, "  batch [-size N] [-out DIR] [-format F] [-j N] [-all] DOC|DIR...")
	fmt.Fprintln(w, "          Extract many documents in parallel; directories are scanned")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Formats: png (default), jpeg, bmp, dib")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %s - Worker count for batch (default: one per CPU)\n", workers.EnvOverride)
	fmt.Fprintf(w, "  %s - Probe workers for directory scans (default: 3)\n", scan.EnvWorkers)
	fmt.Fprintln(w, "  LOG_LEVEL - debug, info, warn or error")
}

// requestedSize turns the size flags into a bounding box. Neither w nor h
// means the default box; a lone one means a square.
func requestedSize(width, height int, widthSet, heightSet, original bool) media.RequestedSize {
	switch {
	case original:
		return media.OriginalSize
	case widthSet && heightSet:
		return media.RequestedSize{Width: width, Height: height}
	case widthSet:
		return media.Square(width)
	case heightSet:
		return media.Square(height)
	default:
		return media.Square(defaultSize)
	}
}

// extract drives the document through the host handshake: Load, size
// negotiation, then Extract.
func (a *app) extract(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	width := fs.Int("w", 0, "bounding box width")
	height := fs.Int("h", 0, "bounding box height")
	original := fs.Bool("original", false, "keep the embedded size")
	formatName := fs.String("format", string(media.FormatPNG), "output format")
	output := fs.String("o", "", "output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Error: extract takes exactly one document")
		return exitUsage
	}
	format, err := media.ParseFormat(*formatName)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	size := requestedSize(*width, *height, set["w"], set["h"], *original)

	toStdout := *output == "" || *output == "-"
	if toStdout && a.isTerminal(a.stdout) {
		fmt.Fprintf(a.stderr, "Error: %v\n", errTerminal)
		return exitUsage
	}

	ext := shell.NewExtension(a.extractor)
	if err := ext.Load(fs.Arg(0)); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	}
	flags := shell.FlagAspect
	if *original {
		flags = shell.FlagOrigSize
	}
	granted, _, err := ext.GetLocation(size, flags)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFail
	}
	logging.Debug("Negotiated %s with flags %s", size, granted)

	img, err := ext.ExtractContext(ctx)
	if err != nil {
		reportExtractError(a.stderr, fs.Arg(0), err)
		return exitFail
	}

	if toStdout {
		err = media.Encode(a.stdout, img, format)
	} else {
		err = writeImageFile(*output, img, format)
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFail
	}
	return exitOK
}

func reportExtractError(w io.Writer, path string, err error) {
	if extract.IsNotApplicable(err) {
		fmt.Fprintf(w, "Error: %s is not a Paint.NET document\n", path)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// writeImageFile encodes img into path, removing the file if encoding fails.
func writeImageFile(path string, img image.Image, format media.Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return media.Encode(f, img, format)
}

// documentInfo is printed by the info command.
type documentInfo struct {
	Path            string `json:"path"`
	FileSize        int64  `json:"fileSize"`
	HeaderBytes     int    `json:"headerBytes"`
	ThumbnailFormat string `json:"thumbnailFormat"`
	EncodedBytes    int    `json:"encodedBytes"`
	MaxDecodedBytes int    `json:"maxDecodedBytes"`
	Width           int    `json:"width,omitempty"`
	Height          int    `json:"height,omitempty"`
	Layers          int    `json:"layers,omitempty"`
	SavedWith       string `json:"savedWithVersion,omitempty"`
	BodyEncoding    string `json:"bodyEncoding"`
}

func (a *app) info(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Error: info takes exactly one document")
		return exitUsage
	}
	path := fs.Arg(0)

	doc, err := a.extractor.Inspect(path)
	if err != nil {
		reportExtractError(a.stderr, path, err)
		return exitFail
	}

	out := documentInfo{
		Path:            path,
		HeaderBytes:     len(doc.Header),
		ThumbnailFormat: string(doc.Thumbnail.Format),
		EncodedBytes:    len(doc.Thumbnail.Payload),
		MaxDecodedBytes: transcoder.RequiredDecodeLength(len(doc.Thumbnail.Payload)),
		BodyEncoding:    string(doc.BodyFormat),
	}
	if st, err := os.Stat(path); err == nil {
		out.FileSize = st.Size()
	}
	if doc.Info != nil {
		out.Width = doc.Info.Width
		out.Height = doc.Info.Height
		out.Layers = doc.Info.Layers
		out.SavedWith = doc.Info.SavedWithVersion
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFail
	}
	return exitOK
}

// batchJob pairs a document with the file its thumbnail goes to.
type batchJob struct {
	source string
	target string
	err    error
}

// planBatch assigns output names. Two documents with the same base name
// would overwrite each other, so the later ones are rejected up front.
func planBatch(paths []string, outDir string, format media.Format) []batchJob {
	jobs := make([]batchJob, len(paths))
	seen := make(map[string]string)
	for i, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		target := filepath.Join(outDir, base+format.Extension())
		jobs[i] = batchJob{source: p, target: target}
		if first, dup := seen[target]; dup {
			jobs[i].err = fmt.Errorf("output %s already produced by %s", target, first)
			continue
		}
		seen[target] = p
	}
	return jobs
}

// expandPaths replaces each directory argument with the documents found
// below it. Files are passed through untouched.
func expandPaths(ctx context.Context, args []string, allFiles bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		config := scan.DefaultConfig()
		config.AllFiles = allFiles
		docs, err := scan.NewWalker(arg, config).Walk(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		for _, d := range docs {
			paths = append(paths, d.Path)
		}
	}
	return paths, nil
}

func (a *app) batch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	size := fs.Int("size", defaultSize, "bounding box edge (0 = original size)")
	outDir := fs.String("out", ".", "output directory")
	formatName := fs.String("format", string(media.FormatPNG), "output format")
	jobsFlag := fs.Int("j", 0, "worker count (0 = one per CPU)")
	allFiles := fs.Bool("all", false, "probe every file in directories, not only *.pdn")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(a.stderr, "Error: batch needs at least one document")
		return exitUsage
	}
	format, err := media.ParseFormat(*formatName)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitUsage
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFail
	}

	n := *jobsFlag
	if n <= 0 {
		n = workers.ForCPU(0)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	paths, err := expandPaths(ctx, fs.Args(), *allFiles)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return exitFail
	}
	if len(paths) == 0 {
		fmt.Fprintln(a.stderr, "No documents found")
		return exitOK
	}

	jobs := planBatch(paths, *outDir, format)
	logging.Debug("Extracting %d documents on %d workers", len(jobs), n)

	errs := workers.Process(ctx, n, jobs, func(ctx context.Context, job batchJob) error {
		if job.err != nil {
			return job.err
		}
		if err := monitor.Wait(ctx); err != nil {
			return err
		}
		img, err := a.extractor.ExtractContext(ctx, job.source, media.Square(*size))
		if err != nil {
			return err
		}
		return writeImageFile(job.target, img, format)
	})

	var written, skipped, failed int
	for i, err := range errs {
		job := jobs[i]
		switch {
		case err == nil:
			written++
			fmt.Fprintf(a.stdout, "ok    %s -> %s\n", job.source, job.target)
		case extract.IsNotApplicable(err):
			skipped++
			fmt.Fprintf(a.stdout, "skip  %s: not a Paint.NET document\n", job.source)
		default:
			failed++
			fmt.Fprintf(a.stdout, "fail  %s: %v\n", job.source, err)
		}
	}
	fmt.Fprintf(a.stderr, "%d written, %d skipped, %d failed\n", written, skipped, failed)

	if failed > 0 {
		return exitFail
	}
	return exitOK
}
