// Package transcoder converts the base64 text embedded in a document header
// into the raw image bytes it encodes.
//
// Decoding follows the standard alphabet (A-Z, a-z, 0-9, '+', '/') with '='
// padding. Callers that manage their own buffers size them with
// [RequiredDecodeLength] and decode with [DecodeInto]; everyone else uses
// [Decode]. [Encode] exists for tools and tests that build documents.
package transcoder
