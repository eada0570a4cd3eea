package handlers

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/filesystem"
	"pdn-thumbnailer/internal/logging"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/metrics"
	"pdn-thumbnailer/internal/middleware"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"
)

// thumbnailRequest is the parsed query of a thumbnail request.
type thumbnailRequest struct {
	size     media.RequestedSize
	format   media.Format
	fallback bool
}

// parseThumbnailRequest reads w, h, original, format and fallback. A lone
// w or h requests a square box; neither requests the default size. A
// non-positive dimension means the original size.
func (h *Handlers) parseThumbnailRequest(r *http.Request) (thumbnailRequest, error) {
	q := r.URL.Query()
	req := thumbnailRequest{size: media.Square(h.defaultSize)}

	format, err := media.ParseFormat(q.Get("format"))
	if err != nil {
		return req, err
	}
	req.format = format

	if req.fallback, err = parseBoolParam(q.Get("fallback")); err != nil {
		return req, fmt.Errorf("fallback: %w", err)
	}

	original, err := parseBoolParam(q.Get("original"))
	if err != nil {
		return req, fmt.Errorf("original: %w", err)
	}
	if original {
		req.size = media.OriginalSize
		return req, nil
	}

	width, hasWidth, err := parseDimension(q.Get("w"))
	if err != nil {
		return req, fmt.Errorf("w: %w", err)
	}
	height, hasHeight, err := parseDimension(q.Get("h"))
	if err != nil {
		return req, fmt.Errorf("h: %w", err)
	}

	switch {
	case hasWidth && hasHeight:
		req.size = media.RequestedSize{Width: width, Height: height}
	case hasWidth:
		req.size = media.Square(width)
	case hasHeight:
		req.size = media.Square(height)
	}

	if !req.size.IsOriginal() && max(req.size.Width, req.size.Height) > h.maxSize {
		return req, fmt.Errorf("requested %s exceeds the %d pixel limit", req.size, h.maxSize)
	}
	return req, nil
}

func parseDimension(s string) (int, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("not an integer: %q", s)
	}
	return n, true, nil
}

func parseBoolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// resolveDocument maps the {path} route variable to a regular file inside
// the document directory. On failure it has already written the response.
func (h *Handlers) resolveDocument(w http.ResponseWriter, r *http.Request) (string, os.FileInfo, bool) {
	rel := mux.Vars(r)["path"]
	if rel == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return "", nil, false
	}

	fullPath, err := filesystem.ResolvePath(h.documentDir, rel)
	if err != nil {
		logging.Warn("Rejected path outside document directory: %q", rel)
		writeJSONError(w, "Invalid path", http.StatusBadRequest)
		return "", nil, false
	}

	info, err := filesystem.StatWithRetry(fullPath, filesystem.DefaultRetryConfig())
	if err != nil {
		switch {
		case os.IsNotExist(err):
			writeJSONErrorKind(w, "File not found", extract.KindFileNotFound.Label(), http.StatusNotFound)
		case os.IsPermission(err):
			writeJSONErrorKind(w, "Access denied", extract.KindAccessDenied.Label(), http.StatusForbidden)
		default:
			logging.Error("Failed to stat %s: %v", fullPath, err)
			writeJSONError(w, "Failed to access file", http.StatusInternalServerError)
		}
		return "", nil, false
	}
	if info.IsDir() {
		writeJSONError(w, "Path is a directory", http.StatusBadRequest)
		return "", nil, false
	}
	return fullPath, info, true
}

// thumbnailETag identifies a rendering: same file version, same request,
// same background. It is a strong validator because rendering is
// deterministic for those inputs.
func (h *Handlers) thumbnailETag(path string, info os.FileInfo, req thumbnailRequest) string {
	key := fmt.Sprintf("%s\x00%d\x00%d\x00%s\x00%s\x00%t\x00%s",
		path, info.Size(), info.ModTime().UnixNano(), req.size, req.format,
		h.extractor.Resizer.SupportsAlphaClear, h.decoder)
	sum := blake2b.Sum256([]byte(key))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches implements the If-None-Match comparison (weak, per RFC 9110).
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// statusForKind maps an extraction failure to an HTTP status.
func statusForKind(kind extract.Kind) int {
	switch kind {
	case extract.KindFileNotFound:
		return http.StatusNotFound
	case extract.KindAccessDenied:
		return http.StatusForbidden
	case extract.KindNotApplicable:
		return http.StatusUnsupportedMediaType
	case extract.KindTruncatedFile, extract.KindMalformedHeader, extract.KindInvalidEncoding,
		extract.KindImageDecodeFailed, extract.KindOutOfMemory:
		return http.StatusUnprocessableEntity
	case extract.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetThumbnail extracts, resizes and encodes the preview embedded in a
// document. Responses are revalidated with ETag rather than cached.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	if h.underPressure() {
		w.Header().Set("Retry-After", "1")
		writeJSONError(w, "Server is under memory pressure", http.StatusServiceUnavailable)
		return
	}

	req, err := h.parseThumbnailRequest(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fullPath, info, ok := h.resolveDocument(w, r)
	if !ok {
		return
	}

	etag := h.thumbnailETag(fullPath, info, req)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	img, err := h.extractor.ExtractContext(r.Context(), fullPath, req.size)
	if err != nil {
		h.writeExtractionError(w, r, err, req)
		return
	}

	h.writeImage(w, r, img, req.format)
}

func (h *Handlers) writeExtractionError(w http.ResponseWriter, r *http.Request, err error, req thumbnailRequest) {
	kind := extract.KindOf(err)
	requestID := middleware.RequestIDFromContext(r.Context())

	if kind == extract.KindCanceled && r.Context().Err() != nil {
		logging.Debug("[%s] Thumbnail request abandoned by client: %v", requestID, err)
		return
	}

	if req.fallback {
		edge := req.size.MaxEdge()
		if req.size.IsOriginal() {
			edge = h.defaultSize
		}
		w.Header().Set(middleware.FallbackHeader, kind.Label())
		// The placeholder does not depend on the document version.
		w.Header().Del("ETag")
		h.writeImage(w, r, media.Placeholder(edge), req.format)
		return
	}

	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logging.Error("[%s] Thumbnail extraction failed: %v", requestID, err)
	}

	message := "Failed to extract thumbnail"
	if kind == extract.KindNotApplicable {
		message = "Not a Paint.NET document"
	}
	w.Header().Del("ETag")
	writeJSONErrorKind(w, message, kind.Label(), status)
}

func (h *Handlers) writeImage(w http.ResponseWriter, r *http.Request, img image.Image, format media.Format) {
	start := time.Now()
	var buf bytes.Buffer
	if err := media.Encode(&buf, img, format); err != nil {
		logging.Error("Failed to encode %s thumbnail: %v", format, err)
		w.Header().Del("ETag")
		writeJSONError(w, "Failed to encode thumbnail", http.StatusInternalServerError)
		return
	}
	metrics.ThumbnailEncodeDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	b := img.Bounds()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Thumbnail-Size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Debug("Failed to write thumbnail response: %v", err)
	}
}
