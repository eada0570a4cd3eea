package media

import "fmt"

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// RequestedSize is the bounding box a caller asked for. A request with any
// non-positive dimension means "original size".
type RequestedSize struct {
	Width  int
	Height int
}

// OriginalSize is the canonical "return the image unscaled" request.
var OriginalSize = RequestedSize{Width: -1, Height: -1}

// Square requests a bounding box of edge by edge pixels.
func Square(edge int) RequestedSize {
	return RequestedSize{Width: edge, Height: edge}
}

// IsOriginal reports whether the request asks for the unscaled image.
func (r RequestedSize) IsOriginal() bool {
	return r.Width <= 0 || r.Height <= 0
}

// MaxEdge is the smaller of the two requested dimensions.
func (r RequestedSize) MaxEdge() int {
	return min(r.Width, r.Height)
}

func (r RequestedSize) String() string {
	if r.IsOriginal() {
		return "original"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ComputeThumbnailSize fits width x height inside a maxEdge square keeping
// the aspect ratio. The longer side becomes min(side, maxEdge) and the
// shorter side is scaled with integer floor, never below 1. Degenerate
// input yields 1x1.
func ComputeThumbnailSize(width, height, maxEdge int) Dimensions {
	if width <= 0 || height <= 0 {
		return Dimensions{Width: 1, Height: 1}
	}

	switch {
	case width > height:
		cx := min(width, maxEdge)
		cy := max(1, scaleFloor(height, cx, width))
		return Dimensions{Width: cx, Height: cy}
	case height > width:
		cy := min(height, maxEdge)
		cx := max(1, scaleFloor(width, cy, height))
		return Dimensions{Width: cx, Height: cy}
	default:
		edge := min(width, maxEdge)
		return Dimensions{Width: edge, Height: edge}
	}
}

// scaleFloor computes floor(a*b/c) without overflowing on large inputs.
func scaleFloor(a, b, c int) int {
	return int(int64(a) * int64(b) / int64(c))
}
