package pdnheader

import (
	"bytes"
	"fmt"
)

var (
	thumbTag   = []byte("<thumb ")
	pngAttr    = []byte(`png="`)
	gifAttr    = []byte(`gif="`)
	closeQuote = byte('"')
)

// Thumbnail is the location of the embedded preview inside the header text.
// Offsets are byte indexes into the header and always satisfy
// TagOffset < AttrOffset < QuoteOffset.
type Thumbnail struct {
	Format  Format
	Payload string

	TagOffset   int
	AttrOffset  int
	QuoteOffset int
}

// LocateThumbnail finds the base64 payload of the thumb tag. Whichever of
// png=" or gif=" occurs first after the tag is used; there is no fallback to
// the other attribute if the chosen one later proves unusable.
func LocateThumbnail(header []byte) (Thumbnail, error) {
	text := cString(header)

	tag := bytes.Index(text, thumbTag)
	if tag < 0 {
		return Thumbnail{}, fmt.Errorf("%w: no %q tag", ErrMalformedHeader, thumbTag)
	}
	searchFrom := tag + len(thumbTag)

	format, attr := firstAttribute(text, searchFrom)
	if attr < 0 {
		return Thumbnail{}, fmt.Errorf("%w: thumb tag has neither png nor gif attribute", ErrMalformedHeader)
	}
	payloadStart := attr + len(pngAttr)

	end := bytes.IndexByte(text[payloadStart:], closeQuote)
	if end < 0 {
		return Thumbnail{}, fmt.Errorf("%w: unterminated %s attribute", ErrMalformedHeader, format)
	}
	quote := payloadStart + end

	return Thumbnail{
		Format:      format,
		Payload:     string(text[payloadStart:quote]),
		TagOffset:   tag,
		AttrOffset:  attr,
		QuoteOffset: quote,
	}, nil
}

// firstAttribute returns the earliest image attribute at or after from.
func firstAttribute(text []byte, from int) (Format, int) {
	rest := text[from:]
	png := bytes.Index(rest, pngAttr)
	gif := bytes.Index(rest, gifAttr)

	switch {
	case png < 0 && gif < 0:
		return "", -1
	case gif < 0 || (png >= 0 && png < gif):
		return FormatPNG, from + png
	default:
		return FormatGIF, from + gif
	}
}
