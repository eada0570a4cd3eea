package shell

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/media"
)

// Loadable accepts the document the next extraction will read.
type Loadable interface {
	Load(path string) error
}

// ThumbnailExtractable produces the thumbnail of a loaded document.
type ThumbnailExtractable interface {
	Extract() (image.Image, error)
}

// Flags are the size-negotiation options a host passes to GetLocation.
type Flags uint32

const (
	FlagAsync Flags = 1 << iota
	FlagCache
	FlagAspect
	FlagOrigSize
)

func (f Flags) String() string {
	names := []struct {
		flag Flags
		name string
	}{
		{FlagAsync, "async"},
		{FlagCache, "cache"},
		{FlagAspect, "aspect"},
		{FlagOrigSize, "origsize"},
	}
	s := ""
	for _, n := range names {
		if f&n.flag != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Priority is the scheduling hint returned to the host.
type Priority int

const PriorityNormal Priority = 0x10000000

var (
	// ErrPending answers an asynchronous request: the host should call
	// Extract on a worker of its own.
	ErrPending = errors.New("extraction pending")

	// ErrNotLoaded is returned by Extract before a successful Load.
	ErrNotLoaded = errors.New("no document loaded")
)

// Extractor is the part of extract.Extractor the shim drives.
type Extractor interface {
	ExtractContext(ctx context.Context, path string, size media.RequestedSize) (image.Image, error)
}

// Extension holds the per-request state of one host interaction. The host
// serializes calls on one Extension; the mutex only guards against misuse.
type Extension struct {
	extractor Extractor

	mu   sync.Mutex
	path string
	size media.RequestedSize
}

var (
	_ Loadable             = (*Extension)(nil)
	_ ThumbnailExtractable = (*Extension)(nil)
)

// NewExtension returns a shim over x. A nil x uses a default
// extract.Extractor.
func NewExtension(x Extractor) *Extension {
	if x == nil {
		x = &extract.Extractor{}
	}
	return &Extension{extractor: x, size: media.OriginalSize}
}

// Load records path. The file itself is not touched until Extract.
func (e *Extension) Load(path string) error {
	if path == "" {
		return fmt.Errorf("load: empty path")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.path = path
	return nil
}

// GetLocation negotiates the output size. The requested size is kept only
// when FlagAspect or FlagOrigSize is set; otherwise the original size is
// used. FlagCache is always added to the returned flags. FlagAsync yields
// ErrPending alongside the other results.
func (e *Extension) GetLocation(size media.RequestedSize, flags Flags) (Flags, Priority, error) {
	e.mu.Lock()
	if flags&(FlagAspect|FlagOrigSize) != 0 {
		e.size = size
	} else {
		e.size = media.OriginalSize
	}
	e.mu.Unlock()

	out := flags | FlagCache
	if flags&FlagAsync != 0 {
		return out, PriorityNormal, ErrPending
	}
	return out, PriorityNormal, nil
}

// Extract runs the pipeline on the loaded document at the negotiated size.
func (e *Extension) Extract() (image.Image, error) {
	return e.ExtractContext(context.Background())
}

// ExtractContext is Extract with cancellation.
func (e *Extension) ExtractContext(ctx context.Context) (image.Image, error) {
	e.mu.Lock()
	path, size := e.path, e.size
	e.mu.Unlock()

	if path == "" {
		return nil, ErrNotLoaded
	}
	return e.extractor.ExtractContext(ctx, path, size)
}
