package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor operating system version.
type Version struct {
	Major int
	Minor int
}

// AlphaClearMinVersion is the first Windows version (Vista) whose shell
// keeps the alpha channel of thumbnail bitmaps.
var AlphaClearMinVersion = Version{Major: 6, Minor: 0}

// ParseVersion parses "major" or "major.minor". Anything after a second dot
// (build numbers) is ignored.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	parts := strings.SplitN(s, ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("invalid major version in %q", s)
	}

	v := Version{Major: major}
	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil || minor < 0 {
			return Version{}, fmt.Errorf("invalid minor version in %q", s)
		}
		v.Minor = minor
	}
	return v, nil
}

// AtLeast reports whether v >= min.
func (v Version) AtLeast(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	return v.Minor >= min.Minor
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Host describes the platform thumbnails are rendered for.
type Host struct {
	OS      string
	Version Version
	Build   int

	// Detected is false when the OS has no version concept relevant to
	// thumbnail compositing. Such hosts always support alpha.
	Detected bool
}

// Override returns a host pinned to the given version string, for
// configurations that render on behalf of a different machine.
func Override(osName, version string) (Host, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return Host{}, err
	}
	return Host{OS: osName, Version: v, Detected: true}, nil
}

// SupportsAlphaClear reports whether a transparent background can be used.
func (h Host) SupportsAlphaClear(min Version) bool {
	if !h.Detected {
		return true
	}
	return h.Version.AtLeast(min)
}

func (h Host) String() string {
	if !h.Detected {
		return h.OS
	}
	if h.Build > 0 {
		return fmt.Sprintf("%s %s (build %d)", h.OS, h.Version, h.Build)
	}
	return fmt.Sprintf("%s %s", h.OS, h.Version)
}
