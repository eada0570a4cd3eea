// Package extract is the thumbnail extraction pipeline: the single entry
// point that turns a document path and a requested size into a bitmap.
//
// A call walks a fixed sequence of states:
//
//	Opening -> ReadingMagic -> ReadingHeader -> ParsingHeader ->
//	DecodingBase64 -> DecodingImage -> Resizing -> Done
//
// A missing or wrong signature ends in NotApplicable; any other failure ends
// in Failed. Every stage fails fast: there is no retry and no partial
// result. All failures, NotApplicable included, match ErrExtractionFailed so
// a caller that only needs "show a generic icon instead" can test for that
// one sentinel, while KindOf recovers the specific reason.
//
// An Extractor holds no per-call state and may be shared by goroutines.
package extract
