package memstream

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
)

var (
	// ErrOutOfRange is returned by Seek when the target position falls
	// outside [0, size).
	ErrOutOfRange = errors.New("memstream: seek position out of range")

	// ErrBufferFull is returned by Write when fewer bytes fit than were
	// requested.
	ErrBufferFull = errors.New("memstream: buffer full")

	// ErrInvalidWhence is returned by Seek for an unknown origin.
	ErrInvalidWhence = errors.New("memstream: invalid whence")
)

// Stream is a cursor over a fixed-length byte buffer. It is not safe for
// concurrent use; clones may be used from different goroutines as long as
// nothing writes to the shared buffer.
type Stream struct {
	buf []byte
	pos int

	created  time.Time
	modified time.Time
	accessed time.Time

	now func() time.Time
}

// Stat describes a stream. Only Size carries meaning for decoders; the
// timestamps are informational.
type Stat struct {
	Name     string
	Size     int64
	Created  time.Time
	Modified time.Time
	Accessed time.Time
	Mode     fs.FileMode
}

// Option configures a Stream.
type Option func(*Stream)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Stream) {
		s.now = now
	}
}

// New wraps buf without copying it. The stream owns buf from here on.
func New(buf []byte, opts ...Option) *Stream {
	s := &Stream{buf: buf, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	t := s.now().UTC()
	s.created, s.modified, s.accessed = t, t, t
	return s
}

// Len returns the buffer size in bytes.
func (s *Stream) Len() int {
	return len(s.buf)
}

// Pos returns the current cursor position.
func (s *Stream) Pos() int {
	return s.pos
}

// Bytes returns the underlying buffer.
func (s *Stream) Bytes() []byte {
	return s.buf
}

// Read copies min(len(p), remaining) bytes from the cursor and advances it.
// A short read is not an error. io.EOF is returned only when the cursor is
// already at the end and p is non-empty.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= len(s.buf) {
		return 0, io.EOF
	}

	n := copy(p, s.buf[s.pos:])
	s.pos += n
	s.accessed = s.now().UTC()
	return n, nil
}

// ReadAt reads from an absolute offset without moving the cursor.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	if off >= int64(len(s.buf)) {
		return 0, io.EOF
	}

	n := copy(p, s.buf[off:])
	s.accessed = s.now().UTC()
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write copies p into the buffer at the cursor, clamped to the buffer end.
// It returns ErrBufferFull when not all of p fit.
func (s *Stream) Write(p []byte) (int, error) {
	n := 0
	if s.pos < len(s.buf) {
		n = copy(s.buf[s.pos:], p)
	}
	s.pos += n
	s.modified = s.now().UTC()

	if n < len(p) {
		return n, ErrBufferFull
	}
	return n, nil
}

// Seek moves the cursor relative to whence (io.SeekStart, io.SeekCurrent or
// io.SeekEnd). The resulting position must lie in [0, size); otherwise the
// cursor stays where it was and ErrOutOfRange is returned.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return int64(s.pos), fmt.Errorf("%w: %d", ErrInvalidWhence, whence)
	}

	target := base + offset
	if target < 0 || target >= int64(len(s.buf)) {
		return int64(s.pos), fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, target, len(s.buf))
	}

	s.pos = int(target)
	return target, nil
}

// Clone returns an independent stream over the same buffer, positioned at
// the same cursor. Writes through either stream are visible to both.
func (s *Stream) Clone() *Stream {
	c := New(s.buf, WithClock(s.now))
	c.pos = s.pos
	return c
}

// Stat reports the stream's size and timestamps.
func (s *Stream) Stat() Stat {
	return Stat{
		Name:     fmt.Sprintf("%p", s.buf),
		Size:     int64(len(s.buf)),
		Created:  s.created,
		Modified: s.modified,
		Accessed: s.accessed,
		Mode:     0o444,
	}
}
