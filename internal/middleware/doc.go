// Package middleware provides HTTP middleware for the thumbnail service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Request IDs (X-Request-ID)
//   - Prometheus request metrics
//   - gzip response compression for uncompressed bitmaps and JSON
package middleware
