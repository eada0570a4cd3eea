package media

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Interpolation names accepted by ParseInterpolation.
const (
	InterpolationBicubic        = "bicubic"
	InterpolationBilinear       = "bilinear"
	InterpolationApproxBilinear = "approx-bilinear"
	InterpolationNearest        = "nearest"
)

// ParseInterpolation maps a configuration name to a scaler. An empty name
// selects bicubic.
func ParseInterpolation(name string) (draw.Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", InterpolationBicubic:
		return draw.CatmullRom, nil
	case InterpolationBilinear:
		return draw.BiLinear, nil
	case InterpolationApproxBilinear:
		return draw.ApproxBiLinear, nil
	case InterpolationNearest:
		return draw.NearestNeighbor, nil
	default:
		return nil, fmt.Errorf("unknown interpolation %q", name)
	}
}

// Resizer scales decoded thumbnails into a requested bounding box.
//
// SupportsAlphaClear selects the background the destination is cleared to
// before drawing: transparent when true, opaque white when false. Hosts that
// discard the alpha channel of a transparent clear need the white one.
type Resizer struct {
	SupportsAlphaClear bool

	// Interpolator defaults to bicubic (Catmull-Rom) when nil.
	Interpolator draw.Interpolator
}

// Render returns a copy of src fitted to size. An original-size request
// clones src keeping its pixel format; otherwise the whole source rectangle
// is scaled onto a new 32-bit NRGBA surface of ComputeThumbnailSize
// dimensions.
func (r Resizer) Render(src image.Image, size RequestedSize) (out image.Image, err error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", ErrResizeFailed)
	}

	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrResizeFailed, p)
		}
	}()

	if size.IsOriginal() {
		return cloneImage(src), nil
	}

	sr := src.Bounds()
	if sr.Empty() {
		return nil, fmt.Errorf("%w: empty source %v", ErrResizeFailed, sr)
	}

	target := ComputeThumbnailSize(sr.Dx(), sr.Dy(), size.MaxEdge())
	dst := image.NewNRGBA(image.Rect(0, 0, target.Width, target.Height))
	dr := dst.Bounds()

	draw.Draw(dst, dr, image.NewUniform(r.background()), image.Point{}, draw.Src)
	r.interpolator().Scale(dst, dr, src, sr, draw.Over, nil)

	return dst, nil
}

func (r Resizer) background() color.Color {
	if r.SupportsAlphaClear {
		return color.Transparent
	}
	return color.White
}

func (r Resizer) interpolator() draw.Interpolator {
	if r.Interpolator == nil {
		return draw.CatmullRom
	}
	return r.Interpolator
}

// cloneImage deep-copies img. Common concrete types keep their pixel format;
// anything else becomes NRGBA.
func cloneImage(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.NRGBA:
		dst := *src
		dst.Pix = append([]uint8(nil), src.Pix...)
		return &dst
	case *image.RGBA:
		dst := *src
		dst.Pix = append([]uint8(nil), src.Pix...)
		return &dst
	case *image.NRGBA64:
		dst := *src
		dst.Pix = append([]uint8(nil), src.Pix...)
		return &dst
	case *image.RGBA64:
		dst := *src
		dst.Pix = append([]uint8(nil), src.Pix...)
		return &dst
	case *image.Gray:
		dst := *src
		dst.Pix = append([]uint8(nil), src.Pix...)
		return &dst
	case *image.Paletted:
		dst := *src
		dst.Pix = append([]uint8(nil), src.Pix...)
		dst.Palette = append(color.Palette(nil), src.Palette...)
		return &dst
	default:
		return imaging.Clone(img)
	}
}
