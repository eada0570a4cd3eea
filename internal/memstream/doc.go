// Package memstream provides a seekable, fixed-size stream over an in-memory
// byte buffer.
//
// A [Stream] lets an image decoder that expects file-like I/O consume a
// thumbnail that only exists in memory. The buffer never grows: reads are
// clamped to the remaining bytes, writes are clamped to the capacity and
// report [ErrBufferFull], and seeks outside the buffer report
// [ErrOutOfRange] without moving the cursor.
//
// Clones share the underlying buffer but keep their own cursor, so a decoder
// can sniff a header through a clone without disturbing the primary reader.
package memstream
