// Package shell adapts the extraction pipeline to a host that asks for
// thumbnails in two steps: first it hands over a document path, then it
// negotiates a size and requests the bitmap.
//
// The two capabilities are separate interfaces, Loadable and
// ThumbnailExtractable, so a host integration can depend on only the one it
// drives. Extension implements both.
package shell
