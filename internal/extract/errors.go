package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/memstream"
	"pdn-thumbnailer/internal/pdnheader"
	"pdn-thumbnailer/internal/transcoder"
)

// ErrExtractionFailed is matched by every error the pipeline returns.
var ErrExtractionFailed = errors.New("thumbnail extraction failed")

// Kind classifies why an extraction produced no bitmap.
type Kind int

const (
	KindIOError Kind = iota
	KindFileNotFound
	KindAccessDenied
	KindTruncatedFile
	KindNotApplicable
	KindMalformedHeader
	KindInvalidEncoding
	KindImageDecodeFailed
	KindOutOfMemory
	KindResizeFailed
	KindOutOfRange
	KindBufferFull
	KindCanceled
)

var kindNames = [...]struct{ name, label string }{
	KindIOError:           {"IOError", "io_error"},
	KindFileNotFound:      {"FileNotFound", "file_not_found"},
	KindAccessDenied:      {"AccessDenied", "access_denied"},
	KindTruncatedFile:     {"TruncatedFile", "truncated_file"},
	KindNotApplicable:     {"NotApplicable", "not_applicable"},
	KindMalformedHeader:   {"MalformedHeader", "malformed_header"},
	KindInvalidEncoding:   {"InvalidEncoding", "invalid_encoding"},
	KindImageDecodeFailed: {"ImageDecodeFailed", "image_decode_failed"},
	KindOutOfMemory:       {"OutOfMemory", "out_of_memory"},
	KindResizeFailed:      {"ResizeFailed", "resize_failed"},
	KindOutOfRange:        {"OutOfRange", "out_of_range"},
	KindBufferFull:        {"BufferFull", "buffer_full"},
	KindCanceled:          {"Canceled", "canceled"},
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k].name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Label is the snake_case form used in metrics and HTTP headers.
func (k Kind) Label() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k].label
	}
	return "unknown"
}

// Error describes a failed extraction.
type Error struct {
	Kind  Kind
	State State // state the pipeline was in when it failed
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("extract %s: %s while %s", e.Path, e.Kind, e.State)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrExtractionFailed and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtractionFailed}
	}
	return []error{ErrExtractionFailed, e.Err}
}

// KindOf classifies err. An *Error anywhere in the chain reports its own
// Kind; otherwise the package sentinels are consulted and anything
// unrecognised is KindIOError.
func KindOf(err error) Kind {
	var xerr *Error
	if errors.As(err, &xerr) {
		return xerr.Kind
	}
	return classify(err)
}

// IsNotApplicable reports whether err means the file has no thumbnail to
// offer rather than a broken one.
func IsNotApplicable(err error) bool {
	return err != nil && KindOf(err) == KindNotApplicable
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, fs.ErrNotExist):
		return KindFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindAccessDenied
	case errors.Is(err, pdnheader.ErrNotApplicable):
		return KindNotApplicable
	case errors.Is(err, pdnheader.ErrTruncatedFile):
		return KindTruncatedFile
	case errors.Is(err, pdnheader.ErrMalformedHeader):
		return KindMalformedHeader
	case errors.Is(err, transcoder.ErrInvalidEncoding):
		return KindInvalidEncoding
	case errors.Is(err, media.ErrImageTooLarge):
		return KindOutOfMemory
	case errors.Is(err, media.ErrImageDecodeFailed):
		return KindImageDecodeFailed
	case errors.Is(err, media.ErrResizeFailed):
		return KindResizeFailed
	case errors.Is(err, memstream.ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, memstream.ErrBufferFull):
		return KindBufferFull
	default:
		return KindIOError
	}
}
