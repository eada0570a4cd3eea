package transcoder

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidEncoding is returned when the input contains characters outside
// the base64 alphabet or has malformed padding.
var ErrInvalidEncoding = errors.New("transcoder: invalid base64 encoding")

// ErrShortBuffer is returned by DecodeInto when dst is smaller than
// RequiredDecodeLength(len(src)).
var ErrShortBuffer = errors.New("transcoder: destination buffer too small")

var encoding = base64.StdEncoding

// RequiredDecodeLength returns the number of bytes a buffer must hold to
// decode encodedLength characters: ceil(encodedLength * 3 / 4). It never
// under-estimates the decoded size of a valid input.
func RequiredDecodeLength(encodedLength int) int {
	if encodedLength <= 0 {
		return 0
	}
	return (encodedLength*3 + 3) / 4
}

// DecodeInto decodes src into dst and returns the number of bytes written,
// which may be less than len(dst).
func DecodeInto(dst, src []byte) (int, error) {
	if need := RequiredDecodeLength(len(src)); len(dst) < need {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(dst), need)
	}

	n, err := encoding.Decode(dst, src)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return n, nil
}

// Decode returns the bytes encoded by text. The returned slice has exactly
// the decoded length.
func Decode(text string) ([]byte, error) {
	buf := make([]byte, RequiredDecodeLength(len(text)))

	n, err := DecodeInto(buf, []byte(text))
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Encode returns the padded standard base64 encoding of data.
func Encode(data []byte) string {
	return encoding.EncodeToString(data)
}
