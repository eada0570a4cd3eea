// Package handlers provides HTTP request handlers for the thumbnail API.
//
// It includes handlers for:
//   - Thumbnail extraction with size negotiation and output format selection
//   - Document header inspection
//   - Listing the documents below a directory
//   - Health, liveness and readiness probes
//   - Version and build information
//
// Document paths in URLs are relative to the configured document directory
// and are confined to it.
package handlers
