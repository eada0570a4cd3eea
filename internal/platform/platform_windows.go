//go:build windows

package platform

import "golang.org/x/sys/windows"

// Current reports the running Windows version. RtlGetVersion is used
// because GetVersionEx lies to unmanifested processes.
func Current() Host {
	info := windows.RtlGetVersion()
	return Host{
		OS:       "windows",
		Version:  Version{Major: int(info.MajorVersion), Minor: int(info.MinorVersion)},
		Build:    int(info.BuildNumber),
		Detected: true,
	}
}
