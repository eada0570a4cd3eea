package media

import (
	"fmt"
	"image"

	"pdn-thumbnailer/internal/memstream"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImagePixels bounds decoded previews (~80MB as NRGBA).
const DefaultMaxImagePixels = 20_000_000

// Decoder turns encoded image bytes into a bitmap. Implementations read the
// stream from its current position and may leave it anywhere.
type Decoder interface {
	Decode(src *memstream.Stream) (image.Image, error)
}

// StdDecoder decodes with the registered Go image codecs.
type StdDecoder struct {
	// MaxPixels rejects images whose declared width*height exceeds it.
	// Zero means DefaultMaxImagePixels; negative disables the check.
	MaxPixels int
}

// Decode checks the declared dimensions on a clone of src, then decodes src
// itself.
func (d StdDecoder) Decode(src *memstream.Stream) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(src.Clone())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecodeFailed, err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, d.MaxPixels); err != nil {
		return nil, fmt.Errorf("%s image: %w", format, err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecodeFailed, format, err)
	}
	return img, nil
}

// Formats lists the codec names StdDecoder understands.
func (StdDecoder) Formats() []string {
	return []string{"png", "gif", "jpeg", "bmp", "tiff", "webp"}
}

func checkPixels(width, height, limit int) error {
	if limit == 0 {
		limit = DefaultMaxImagePixels
	}
	if limit < 0 {
		return nil
	}
	if pixels := int64(width) * int64(height); pixels > int64(limit) {
		return fmt.Errorf("%w: %dx%d is %d pixels, limit %d", ErrImageTooLarge, width, height, pixels, limit)
	}
	return nil
}
