//go:build !windows

package platform

import "runtime"

// Current reports the running platform. Only Windows versions gate alpha
// support, so other systems are returned undetected.
func Current() Host {
	return Host{OS: runtime.GOOS}
}
