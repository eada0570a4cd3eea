// Package media turns an embedded preview into the bitmap handed back to
// callers.
//
// It covers three steps of thumbnail extraction:
//   - Decoding: a Decoder reads image bytes from an in-memory stream
//     (StdDecoder with the Go codecs, VipsDecoder with libvips)
//   - Resizing: ComputeThumbnailSize and Resizer fit the bitmap into a
//     requested bounding box without cropping
//   - Encoding: Encode writes PNG, JPEG, BMP or raw DIB output, and
//     Placeholder draws the generic icon shown when extraction fails
package media
