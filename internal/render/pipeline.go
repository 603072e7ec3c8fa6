package render

import (
	"image"

	"golang.org/x/image/draw"
)

// minCardHeight is the smallest logical height a cropped card keeps.
const minCardHeight = 100

// cropToContent cuts unused vertical space below the layout cursor. The
// planners over-allocate on purpose (exact pre-measurement of text-heavy
// CJK content is unreliable), so the canvas is trimmed to
// finalY+bottomPad, clamped to the minimum card height and to the
// allocated surface.
func cropToContent(img *image.RGBA, finalY, bottomPad, scale int) *image.RGBA {
	b := img.Bounds()
	cropH := finalY + bottomPad
	if min := minCardHeight * scale; cropH < min {
		cropH = min
	}
	if cropH >= b.Dy() {
		return img
	}
	return img.SubImage(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+cropH)).(*image.RGBA)
}

// downscale resamples the supersampled surface to 1/scale size with the
// Catmull-Rom filter, which anti-aliases the hand-drawn rounded corners
// and bar caps.
func downscale(img *image.RGBA, scale int) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/scale, b.Dy()/scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// finish runs the crop/downscale tail of every planner. finalY is the
// supersampled cursor position after the last drawn element.
func (c *canvas) finish(finalY, bottomPad float64) image.Image {
	img := c.dc.Image().(*image.RGBA)
	cropped := cropToContent(img, int(finalY), int(bottomPad), c.scale)
	return downscale(cropped, c.scale)
}
