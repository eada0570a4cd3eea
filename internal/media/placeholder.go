package media

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	placeholderBorder = color.NRGBA{R: 140, G: 140, B: 140, A: 255}
	placeholderPage   = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	placeholderFold   = color.NRGBA{R: 210, G: 210, B: 210, A: 255}
	placeholderLine   = color.NRGBA{R: 190, G: 200, B: 215, A: 255}
)

// Placeholder draws the generic document icon shown in place of a preview
// that could not be extracted. The icon is edge x edge on a transparent
// background; edge is clamped to at least 16.
func Placeholder(edge int) *image.NRGBA {
	edge = max(edge, 16)
	canvas := imaging.New(edge, edge, color.Transparent)

	margin := edge / 8
	pageW := edge - 2*margin - edge/8
	pageH := edge - 2*margin
	border := max(1, edge/64)
	origin := image.Pt((edge-pageW)/2, margin)

	canvas = imaging.Paste(canvas, imaging.New(pageW, pageH, placeholderBorder), origin)
	canvas = imaging.Paste(canvas,
		imaging.New(pageW-2*border, pageH-2*border, placeholderPage),
		origin.Add(image.Pt(border, border)))

	// Folded top-right corner: cut above the diagonal, shade below it
	fold := pageW / 4
	foldX := origin.X + pageW - fold
	for dy := 0; dy < fold; dy++ {
		for dx := 0; dx < fold; dx++ {
			switch {
			case dx > dy:
				canvas.SetNRGBA(foldX+dx, origin.Y+dy, color.NRGBA{})
			case dx == dy:
				canvas.SetNRGBA(foldX+dx, origin.Y+dy, placeholderBorder)
			default:
				canvas.SetNRGBA(foldX+dx, origin.Y+dy, placeholderFold)
			}
		}
	}

	// Text lines
	lineH := max(1, edge/32)
	inset := pageW / 6
	for i := 0; i < 4; i++ {
		y := origin.Y + fold + pageH/8 + i*lineH*3
		if y+lineH >= origin.Y+pageH-border {
			break
		}
		w := pageW - 2*inset
		if i == 3 {
			w = w * 2 / 3
		}
		canvas = imaging.Paste(canvas, imaging.New(w, lineH, placeholderLine), image.Pt(origin.X+inset, y))
	}

	return canvas
}
