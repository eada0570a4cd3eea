/*
Package filesystem opens documents with automatic retry for NFS stale file
handle errors and confines request paths to the document directory.

# Purpose

Documents are commonly served from network mounts. ESTALE (stale file
handle) errors occur when an NFS-mounted file is accessed during network
issues or server-side changes, and usually clear on the next attempt. Every
other error fails immediately.

# Usage

	opener := filesystem.Opener{Retry: filesystem.DefaultRetryConfig()}
	f, err := opener.Open("/documents/poster.pdn")
	if err != nil {
	    return err
	}
	defer f.Close()

Request paths are resolved against the document root first:

	full, err := filesystem.ResolvePath("/documents", "art/poster.pdn")

# Retry Behavior

Exponential backoff with these defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

# Metrics

Retry attempts, successes, failures and durations are reported through an
Observer installed with SetObserver, labelled by the volume the path lives
on (see VolumeResolver).
*/
package filesystem
