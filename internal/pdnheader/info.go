package pdnheader

import (
	"bytes"
	"fmt"
	"strconv"
)

var imageTag = []byte("<pdnImage")

// ImageInfo holds the document-level attributes of the pdnImage element.
// Fields the header does not carry are left zero.
type ImageInfo struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Layers           int    `json:"layers"`
	SavedWithVersion string `json:"savedWithVersion,omitempty"`
}

// ParseImageInfo reads the pdnImage attributes with the same substring
// scanning used for the thumbnail. Numeric attributes that are present but
// not integers are an error.
func ParseImageInfo(header []byte) (ImageInfo, error) {
	text := cString(header)

	start := bytes.Index(text, imageTag)
	if start < 0 {
		return ImageInfo{}, fmt.Errorf("%w: no pdnImage element", ErrMalformedHeader)
	}
	end := bytes.IndexByte(text[start:], '>')
	if end < 0 {
		return ImageInfo{}, fmt.Errorf("%w: unterminated pdnImage element", ErrMalformedHeader)
	}
	element := text[start : start+end]

	var info ImageInfo
	var err error
	if info.Width, err = intAttribute(element, "width"); err != nil {
		return ImageInfo{}, err
	}
	if info.Height, err = intAttribute(element, "height"); err != nil {
		return ImageInfo{}, err
	}
	if info.Layers, err = intAttribute(element, "layers"); err != nil {
		return ImageInfo{}, err
	}
	info.SavedWithVersion, _ = attribute(element, "savedWithVersion")

	return info, nil
}

// attribute returns the quoted value of name inside element.
func attribute(element []byte, name string) (string, bool) {
	marker := []byte(" " + name + `="`)

	i := bytes.Index(element, marker)
	if i < 0 {
		return "", false
	}
	valueStart := i + len(marker)

	end := bytes.IndexByte(element[valueStart:], '"')
	if end < 0 {
		return "", false
	}
	return string(element[valueStart : valueStart+end]), true
}

func intAttribute(element []byte, name string) (int, error) {
	raw, ok := attribute(element, name)
	if !ok {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrMalformedHeader, name, raw)
	}
	return v, nil
}
