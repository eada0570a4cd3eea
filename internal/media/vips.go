package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"sync"

	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/memstream"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips starts libvips and routes its log output through the
// application logger. It should be called once at startup before any
// VipsDecoder is used; repeat calls are no-ops.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Must be configured before Startup to honour LOG_LEVEL
	vipsLogLevel, logHandler := vipsLogging(logging.GetLevel())
	vips.LoggingSettings(logHandler, vipsLogLevel)

	// Previews are small; keep the operation cache modest
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      16 * 1024 * 1024,
		MaxCacheSize:     50,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// vipsLogging maps the application level to the libvips verbosity. libvips
// filters by verbosity itself, so the handler only picks the output level.
func vipsLogging(level logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	var threshold vips.LogLevel
	switch level {
	case logging.LevelDebug:
		threshold = vips.LogLevelInfo
	case logging.LevelInfo:
		threshold = vips.LogLevelWarning
	case logging.LevelWarn:
		threshold = vips.LogLevelError
	case logging.LevelError:
		threshold = vips.LogLevelCritical
	default:
		threshold = vips.LogLevelWarning
	}

	handler := func(domain string, msgLevel vips.LogLevel, msg string) {
		switch msgLevel {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}
	return threshold, handler
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// VipsDecoder decodes with libvips, which accepts more container variants
// than the Go codecs. InitVips must have been called.
type VipsDecoder struct {
	// MaxPixels has the same meaning as StdDecoder.MaxPixels.
	MaxPixels int
}

// Decode loads the remaining bytes of src into libvips, re-exports them as
// PNG and decodes that with imaging so callers receive a plain image.Image.
func (d VipsDecoder) Decode(src *memstream.Stream) (image.Image, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("%w: libvips not available", ErrImageDecodeFailed)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read image bytes: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vips: %v", ErrImageDecodeFailed, err)
	}
	defer ref.Close()

	if err := checkPixels(ref.Width(), ref.Height(), d.MaxPixels); err != nil {
		return nil, err
	}

	pngBytes, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("%w: vips export: %v", ErrImageDecodeFailed, err)
	}

	img, err := imaging.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decode vips output: %v", ErrImageDecodeFailed, err)
	}

	logging.Debug("Vips decoded %dx%d preview (%d bytes)", img.Bounds().Dx(), img.Bounds().Dy(), len(data))
	return img, nil
}
