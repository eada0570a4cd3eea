package shell

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"pdn-thumbnailer/internal/extract"
	"pdn-thumbnailer/internal/media"
	"pdn-thumbnailer/internal/pdntest"
)

type fakeExtractor struct {
	path string
	size media.RequestedSize
}

func (f *fakeExtractor) ExtractContext(_ context.Context, path string, size media.RequestedSize) (image.Image, error) {
	f.path, f.size = path, size
	return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestGetLocation(t *testing.T) {
	req := media.RequestedSize{Width: 96, Height: 64}

	tests := []struct {
		name      string
		flags     Flags
		wantSize  media.RequestedSize
		wantFlags Flags
		wantErr   error
	}{
		{"no flags", 0, media.OriginalSize, FlagCache, nil},
		{"aspect", FlagAspect, req, FlagAspect | FlagCache, nil},
		{"origsize", FlagOrigSize, req, FlagOrigSize | FlagCache, nil},
		{"cache only", FlagCache, media.OriginalSize, FlagCache, nil},
		{"async", FlagAsync | FlagAspect, req, FlagAsync | FlagAspect | FlagCache, ErrPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := &fakeExtractor{}
			e := NewExtension(fx)
			if err := e.Load("doc.pdn"); err != nil {
				t.Fatalf("Load: %v", err)
			}

			flags, prio, err := e.GetLocation(req, tt.flags)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if flags != tt.wantFlags {
				t.Errorf("flags = %v, want %v", flags, tt.wantFlags)
			}
			if prio != PriorityNormal {
				t.Errorf("priority = %#x", prio)
			}

			if _, err := e.Extract(); err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if fx.size != tt.wantSize || fx.path != "doc.pdn" {
				t.Errorf("extracted %q at %v, want doc.pdn at %v", fx.path, fx.size, tt.wantSize)
			}
		})
	}
}

func TestExtractBeforeLoad(t *testing.T) {
	e := NewExtension(&fakeExtractor{})
	if _, err := e.Extract(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("err = %v, want ErrNotLoaded", err)
	}
	if err := e.Load(""); err == nil {
		t.Error("Load(\"\") succeeded")
	}
}

func TestExtensionEndToEnd(t *testing.T) {
	path := pdntest.Write(t, t.TempDir(), "a.pdn", pdntest.Document(t, pdntest.Solid(100, 50, color.White)))

	e := NewExtension(nil)
	if err := e.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, _, err := e.GetLocation(media.Square(20), FlagAspect); err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	img, err := e.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(20, 10) {
		t.Errorf("size = %v, want 20x10", got)
	}

	if err := e.Load(path + ".missing"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := e.Extract(); !errors.Is(err, extract.ErrExtractionFailed) {
		t.Errorf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestFlagsString(t *testing.T) {
	if got := (FlagAspect | FlagCache).String(); got != "cache|aspect" {
		t.Errorf("String() = %q", got)
	}
	if got := Flags(0).String(); got != "none" {
		t.Errorf("String() = %q", got)
	}
}
