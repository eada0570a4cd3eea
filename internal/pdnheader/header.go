package pdnheader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic is the four-byte document signature.
	Magic = "PDN3"

	// MaxHeaderLength is the largest length a 24-bit field can carry.
	MaxHeaderLength = 1<<24 - 1

	lengthFieldSize = 3
)

var (
	// ErrNotApplicable means the input is not a PDN3 document, so it has no
	// embedded thumbnail. It is a classification rather than a failure.
	ErrNotApplicable = errors.New("pdnheader: not a PDN3 document")

	// ErrMalformedHeader means the header lacks the thumb tag, the image
	// attribute or its closing quote.
	ErrMalformedHeader = errors.New("pdnheader: malformed header")

	// ErrTruncatedFile means the input ended before an exact byte count
	// could be read.
	ErrTruncatedFile = errors.New("pdnheader: truncated file")
)

// Format identifies which image attribute carried the thumbnail.
type Format string

const (
	FormatPNG Format = "png"
	FormatGIF Format = "gif"
)

// BodyFormat describes the bytes that follow the header.
type BodyFormat string

const (
	BodyUnknown BodyFormat = "unknown"
	BodyRaw     BodyFormat = "raw"
	BodyGzip    BodyFormat = "gzip"
)

// CheckMagic reads the four signature bytes. A short read or a mismatch
// yields ErrNotApplicable; other read failures are returned wrapped.
func CheckMagic(r io.Reader) error {
	var magic [len(Magic)]byte

	if _, err := io.ReadFull(r, magic[:]); err != nil {
		if isEOF(err) {
			return fmt.Errorf("%w: file shorter than signature", ErrNotApplicable)
		}
		return fmt.Errorf("read signature: %w", err)
	}

	if string(magic[:]) != Magic {
		return fmt.Errorf("%w: signature %q", ErrNotApplicable, magic[:])
	}
	return nil
}

// ReadHeaderText reads the 24-bit length field and exactly that many header
// bytes. It must be called right after CheckMagic.
func ReadHeaderText(r io.Reader) ([]byte, error) {
	var field [lengthFieldSize]byte

	if _, err := io.ReadFull(r, field[:]); err != nil {
		if isEOF(err) {
			return nil, fmt.Errorf("%w: header length field", ErrTruncatedFile)
		}
		return nil, fmt.Errorf("read header length: %w", err)
	}

	length := DecodeLength(field)

	// Read through a limit rather than allocating the declared length up
	// front, so a bogus length on a short file costs only what is there.
	header, err := io.ReadAll(io.LimitReader(r, int64(length)))
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != length {
		return nil, fmt.Errorf("%w: header declares %d bytes, found %d", ErrTruncatedFile, length, len(header))
	}
	return header, nil
}

// ReadHeader performs CheckMagic followed by ReadHeaderText.
func ReadHeader(r io.Reader) ([]byte, error) {
	if err := CheckMagic(r); err != nil {
		return nil, err
	}
	return ReadHeaderText(r)
}

// DecodeLength assembles the 24-bit little-endian header length.
func DecodeLength(field [lengthFieldSize]byte) int {
	return int(field[0]) | int(field[1])<<8 | int(field[2])<<16
}

// EncodeLength is the inverse of DecodeLength. It panics if n does not fit
// in 24 bits.
func EncodeLength(n int) [lengthFieldSize]byte {
	if n < 0 || n > MaxHeaderLength {
		panic(fmt.Sprintf("pdnheader: header length %d out of range", n))
	}
	return [lengthFieldSize]byte{byte(n), byte(n >> 8), byte(n >> 16)}
}

// PeekBodyFormat reads the two bytes after the header. It never fails:
// anything unexpected, including a short read, is BodyUnknown.
func PeekBodyFormat(r io.Reader) BodyFormat {
	var marker [2]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return BodyUnknown
	}

	switch {
	case marker[0] == 0x00 && marker[1] == 0x01:
		return BodyRaw
	case marker[0] == 0x1f && marker[1] == 0x8b:
		return BodyGzip
	default:
		return BodyUnknown
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// cString trims header at its first NUL byte. Marker searches never look
// past it.
func cString(header []byte) []byte {
	if i := bytes.IndexByte(header, 0); i >= 0 {
		return header[:i]
	}
	return header
}
