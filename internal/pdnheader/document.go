package pdnheader

import (
	"io"
)

// Document is everything Parse learns from the start of a file.
type Document struct {
	Header     []byte
	Thumbnail  Thumbnail
	Info       *ImageInfo
	BodyFormat BodyFormat
}

// Parse reads the header from r, locates the thumbnail and records the
// image info and body marker when they are present. Only the thumbnail is
// required; a missing pdnImage element leaves Info nil.
func Parse(r io.Reader) (*Document, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	thumb, err := LocateThumbnail(header)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Header:     header,
		Thumbnail:  thumb,
		BodyFormat: PeekBodyFormat(r),
	}
	if info, err := ParseImageInfo(header); err == nil {
		doc.Info = &info
	}
	return doc, nil
}
