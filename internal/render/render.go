// Package render turns usage/quota statistics payloads into raster card
// images. Every card follows the same two-phase shape: the planner first
// derives the canvas height from the payload's list lengths, then draws
// header, metric tiles and the variable sections in one top-to-bottom
// pass while tracking a cursor; the supersampled surface is cropped at
// the cursor and downscaled to logical size.
//
// The renderer is a pure function of its input. The only process-wide
// state is the font path/face cache (see fonts.go), so one Renderer may
// serve concurrent calls.
package render

import "image"

// Options configures a Renderer.
type Options struct {
	// HighResolution selects 3× supersampling instead of 2×.
	HighResolution bool
}

// Renderer lays out and draws statistics cards. It holds configuration
// only; no per-render state survives a call.
type Renderer struct {
	scale       int
	padding     int // logical outer margin
	cardRadius  int
	cardPadding int
}

// New builds a Renderer.
func New(opts Options) *Renderer {
	scale := 2
	if opts.HighResolution {
		scale = 3
	}
	return &Renderer{
		scale:       scale,
		padding:     28,
		cardRadius:  16,
		cardPadding: 24,
	}
}

// Scale exposes the supersample factor (for callers sizing expectations).
func (r *Renderer) Scale() int { return r.scale }

// Render dispatches on the payload variant and returns the finished card.
// A nil payload returns a nil image; the sealed Payload set makes any
// other "unknown kind" impossible at compile time.
func (r *Renderer) Render(p Payload) image.Image {
	switch v := p.(type) {
	case *Overview:
		return r.renderOverview(v)
	case *Today:
		return r.renderToday(v)
	case *Quota:
		return r.renderQuota(v)
	case *Dashboard:
		return r.renderDashboard(v)
	default:
		return nil
	}
}
