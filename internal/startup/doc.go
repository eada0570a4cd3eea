// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - DOCUMENT_DIR: Directory documents are served from (default: /documents)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - DECODER: Pixel decoder for embedded thumbnails, std or vips (default: std)
//   - INTERPOLATION: bicubic, bilinear, approx-bilinear or nearest (default: bicubic)
//   - ALPHA_CLEAR_MIN_VERSION: First platform version given a transparent background (default: 6.0)
//   - PLATFORM_VERSION: Render as if running on this platform version
//   - DEFAULT_THUMBNAIL_SIZE: Bounding box edge when none is requested (default: 256)
//   - MAX_THUMBNAIL_SIZE: Largest bounding box edge a request may ask for (default: 1024)
//   - MAX_IMAGE_PIXELS: Largest embedded image decoded, in pixels (default: 20000000)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X pdn-thumbnailer/internal/startup.Version=1.2.0"
//
// # Lifecycle Logging
//
// The Log* functions print the banner-style sections that make up the
// server's startup and shutdown output.
package startup
