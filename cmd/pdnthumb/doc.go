// Command pdnthumb extracts the thumbnail Paint.NET embeds in the header of
// PDN3 documents, without rendering the document itself.
//
// Usage:
//
//	pdnthumb [global flags] <command> [flags]
//
// Commands:
//
//	extract  Write one thumbnail to -o FILE or to stdout. -w and -h bound
//	         the output; a lone one bounds a square. -original keeps the
//	         embedded size. Binary output is never written to a terminal.
//
//	info     Print the header fields of one document as JSON: embedded
//	         thumbnail format and size, declared image size and layer
//	         count, and how the layer data after the header is encoded.
//
//	batch    Extract many documents on a worker pool into -out DIR.
//	         Directory arguments are scanned for *.pdn files (every file
//	         with -all). Files that are not Paint.NET documents are
//	         skipped; any other failure makes the exit status non-zero.
//
// Global flags:
//
//	-v              Debug logging, including pipeline state transitions
//	-platform V     Render for platform version V (controls whether the
//	                background is transparent or white)
//	-decoder D      std (Go codecs) or vips (libvips)
//	-interpolation  bicubic, bilinear, approx-bilinear or nearest
//	-metrics-file   Write extraction metrics in Prometheus text format,
//	                for the node exporter textfile collector
//
// Exit status is 0 on success, 1 when an extraction failed and 2 on a
// usage error.
package main
