package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// canvas wraps a gg context sized at scale× the logical card dimensions.
// All coordinates passed to its methods are supersampled pixels; planners
// convert logical values through sc().
type canvas struct {
	dc    *gg.Context
	scale int
	w, h  float64
}

// typeface bundles a cached face with its pixel size.
type typeface struct {
	px float64
	f  font.Face
}

// newCanvas allocates the supersampled surface and paints the vertical
// background gradient.
func newCanvas(w, h, scale int) *canvas {
	dc := gg.NewContext(w, h)
	grad := gg.NewLinearGradient(0, 0, 0, float64(h))
	grad.AddColorStop(0, bgGradientStart)
	grad.AddColorStop(1, bgGradientEnd)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	return &canvas{dc: dc, scale: scale, w: float64(w), h: float64(h)}
}

// sc converts a logical pixel value to supersampled pixels.
func (c *canvas) sc(v int) float64 { return float64(v * c.scale) }

// font returns a face at the given logical pixel size, scaled.
func (c *canvas) font(logicalPx int) typeface {
	px := float64(logicalPx * c.scale)
	return typeface{px: px, f: fontFace(px)}
}

// text draws s with its top-left corner at (x, y).
func (c *canvas) text(x, y float64, s string, col color.Color, tf typeface) {
	c.dc.SetFontFace(tf.f)
	c.dc.SetColor(col)
	asc := float64(tf.f.Metrics().Ascent) / 64
	c.dc.DrawString(s, x, y+asc)
}

// textRight draws s with its top-right corner at (xRight, y).
func (c *canvas) textRight(xRight, y float64, s string, col color.Color, tf typeface) {
	w, _ := c.textSize(s, tf)
	c.text(xRight-w, y, s, col, tf)
}

// textSize measures s: advance width and line height in pixels.
func (c *canvas) textSize(s string, tf typeface) (float64, float64) {
	w := textWidth(tf.f, s)
	m := tf.f.Metrics()
	h := float64(m.Ascent+m.Descent) / 64
	return w, h
}

// roundedRect fills a rounded rectangle; outline (when non-nil) strokes it
// with the given width. The radius is clamped to half the shorter side and
// the shape degenerates to a plain rectangle below radius 1.
func (c *canvas) roundedRect(x, y, w, h, r float64, fill color.Color, outline color.Color, outlineWidth float64) {
	r = clampRadius(r, w, h)
	c.dc.SetColor(fill)
	if r < 1 {
		c.dc.DrawRectangle(x, y, w, h)
	} else {
		c.dc.DrawRoundedRectangle(x, y, w, h, r)
	}
	c.dc.Fill()

	if outline == nil {
		return
	}
	c.dc.SetColor(outline)
	c.dc.SetLineWidth(outlineWidth)
	if r < 1 {
		c.dc.DrawRectangle(x, y, w, h)
	} else {
		c.dc.DrawRoundedRectangle(x, y, w, h, r)
	}
	c.dc.Stroke()
}

// clampRadius bounds a corner radius to half the shorter rectangle side.
func clampRadius(r, w, h float64) float64 {
	if max := math.Min(w, h) / 2; r > max {
		return max
	}
	return r
}

// progressBar draws a fully rounded track and the filled portion for
// percent (0..100). The fill is never narrower than the bar height so the
// rounded cap keeps its shape at low percentages.
func (c *canvas) progressBar(x, y, w, h, percent float64, col color.Color) {
	radius := h / 2
	c.roundedRect(x, y, w, h, radius, progressBg, nil, 0)
	fill := progressFillWidth(w, h, percent)
	c.roundedRect(x, y, fill, h, radius, col, nil, 0)
}

// progressFillWidth computes the filled width of a progress bar:
// max(height, width·percent/100), clamped to the full width.
func progressFillWidth(w, h, percent float64) float64 {
	fill := w * percent / 100
	if fill < h {
		fill = h
	}
	if fill > w {
		fill = w
	}
	return fill
}

// statusDot draws a small filled circle badge.
func (c *canvas) statusDot(cx, cy, r float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawCircle(cx, cy, r)
	c.dc.Fill()
}

// line draws a straight divider segment.
func (c *canvas) line(x1, y1, x2, y2, width float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}
