// Package pdnheader reads the metadata header at the start of a PDN3 layered
// image document and locates the base64 preview image embedded in it.
//
// The on-disk layout is:
//
//	bytes [0, 4)      ASCII "PDN3"
//	bytes [4, 7)      header length L, 24-bit little-endian
//	bytes [7, 7+L)    UTF-8 header text (an XML fragment)
//	bytes [7+L, ...)  document body, 0x00 0x01 (raw) or 0x1f 0x8b (gzip)
//
// The header is searched with plain substring scanning rather than an XML
// parser. The grammar actually written is fixed and tiny:
//
//	<pdnImage width="800" height="600" layers="3" savedWithVersion="3.36">
//	  <custom><thumb png="iVBORw0KGgo..." /></custom>
//	</pdnImage>
//
// A missing or wrong signature is reported as [ErrNotApplicable]: the file is
// simply not a document with a preview. Truncated length or header bytes are
// [ErrTruncatedFile], and a header without a usable thumb attribute is
// [ErrMalformedHeader].
package pdnheader
