// Package main provides the entry point for the PDN thumbnail service.
//
// The service answers HTTP requests for the preview image embedded in
// Paint.NET (PDN3) documents stored under a document directory. It never
// renders document layers; it decodes the base64 thumbnail the editor wrote
// into the file header, scales it and re-encodes it.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from environment or cgroup limits
//  2. Configuration Loading: Reads environment variables and validates them
//  3. Platform Resolution: Decides whether thumbnails keep a transparent
//     background or are flattened onto white
//  4. Decoder Initialization: Go image codecs, or libvips with DECODER=vips
//  5. HTTP Server Setup: Routes, middleware chain and the metrics server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM and stops all components
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - GET/HEAD /api/thumbnail/{path}?w=&h=&original=&format=&fallback=
//     - GET /api/info/{path}
//     - GET /api/documents?path=DIR
//     - /health, /healthz, /livez, /readyz, /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//
// Thumbnails are never cached. Every response carries an ETag derived from
// the document's identity and the request, so clients revalidate with
// If-None-Match.
//
// # Environment Variables
//
//   - DOCUMENT_DIR: Root directory containing documents (default: /documents)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - DECODER: std or vips (default: std)
//   - INTERPOLATION: bicubic, bilinear, approx-bilinear or nearest
//   - ALPHA_CLEAR_MIN_VERSION: First platform version with transparent
//     thumbnail backgrounds (default: 6.0)
//   - PLATFORM_VERSION: Overrides the detected platform version
//   - DEFAULT_THUMBNAIL_SIZE / MAX_THUMBNAIL_SIZE: Box edge in pixels
//   - MAX_IMAGE_PIXELS: Largest embedded image accepted for decoding
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - GOMEMLIMIT / MEMORY_LIMIT / MEMORY_RATIO: Memory limit configuration
//
// # Related Packages
//
//   - [pdn-thumbnailer/internal/extract]: The extraction pipeline
//   - [pdn-thumbnailer/internal/handlers]: HTTP request handlers
//   - [pdn-thumbnailer/internal/media]: Decoding, resizing and encoding
//   - [pdn-thumbnailer/internal/middleware]: HTTP middleware
//   - [pdn-thumbnailer/internal/startup]: Configuration and initialization
//
// The pdnthumb command in cmd/pdnthumb offers the same extraction offline.
package main
