package media

import "errors"

var (
	// ErrImageDecodeFailed means the decoder rejected the image bytes.
	ErrImageDecodeFailed = errors.New("media: image decode failed")

	// ErrImageTooLarge means the image declares more pixels than the
	// decoder is allowed to allocate.
	ErrImageTooLarge = errors.New("media: image too large")

	// ErrResizeFailed means the destination surface could not be produced.
	ErrResizeFailed = errors.New("media: resize failed")

	// ErrUnsupportedFormat means an output format name was not recognized.
	ErrUnsupportedFormat = errors.New("media: unsupported format")
)
