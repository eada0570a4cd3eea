// Package platform answers the one host capability question thumbnail
// rendering depends on: whether a transparent background survives being
// handed back to the host.
//
// Windows hosts older than Vista (6.0) drop the alpha channel of a cleared
// bitmap, so previews rendered on a transparent background come out black.
// Callers resolve the answer once at startup and pass it to the resizer.
package platform
