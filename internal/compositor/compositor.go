package compositor

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// DefaultMarkerThickness is the anchor marker line height in screen pixels.
// Thick enough to spot from a music stand, thin enough not to cover a staff
// line.
const DefaultMarkerThickness = 3

// DefaultMarkerColor is the anchor marker color.
var DefaultMarkerColor = color.RGBA{R: 0xe0, G: 0x20, B: 0x20, A: 0xff}

// Overlay draws a full-width horizontal marker line at each anchor's screen
// position. In performance mode all overlay drawing is suppressed and dst is
// returned untouched.
//
// dst is modified in place; callers that need the clean strip again (e.g.
// after a performance-mode toggle) work on a copy or re-request it from the
// render cache.
func Overlay(dst *image.RGBA, anchors []coords.Coordinate, space *coords.Space, thickness int, markerColor color.Color, performanceMode bool) {
	if performanceMode || dst == nil {
		return
	}
	if thickness < 1 {
		thickness = DefaultMarkerThickness
	}
	if markerColor == nil {
		markerColor = DefaultMarkerColor
	}

	bounds := dst.Bounds()
	src := image.NewUniform(markerColor)
	for _, a := range anchors {
		// Rounded only here, at the point of use.
		y := space.DocumentToScreenPx(a)
		line := image.Rect(bounds.Min.X, y, bounds.Max.X, y+thickness)
		draw.Draw(dst, line.Intersect(bounds), src, image.Point{}, draw.Src)
	}
}

// CloneStrip returns a deep copy of a rendered strip, for callers that
// overlay onto cached bitmaps without corrupting the cache.
func CloneStrip(src *image.RGBA) *image.RGBA {
	if src == nil {
		return nil
	}
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// Offsetter is the slice of the viewport the rescale needs.
type Offsetter interface {
	// ScrollOffset returns the current vertical scroll offset in screen
	// pixels.
	ScrollOffset() float64

	// SetScrollOffset moves the viewport to the given vertical offset.
	SetScrollOffset(v float64)

	// ScrollRange returns the valid scroll offset range.
	ScrollRange() (min, max float64)
}

// Rescale is a pending scale change: the document coordinate that was at the
// top of the viewport when the change began.
type Rescale struct {
	top coords.Coordinate
}

// BeginRescale captures the top-of-view document coordinate before the scale
// changes. Call this first, then apply the zoom and request the new strip.
func BeginRescale(space *coords.Space, view Offsetter) Rescale {
	return Rescale{top: space.ScreenToDocument(view.ScrollOffset())}
}

// Top returns the captured document coordinate.
func (r Rescale) Top() coords.Coordinate {
	return r.top
}

// Complete restores the captured coordinate to the top of the viewport at
// the space's current (new) scale, clamped into the live scroll range. The
// host must call this only after its layout has committed the new content
// size; the clamp uses whatever range the viewport reports now.
func (r Rescale) Complete(space *coords.Space, view Offsetter) {
	offset := space.DocumentToScreen(r.top)
	lo, hi := view.ScrollRange()
	if offset < lo {
		offset = lo
	}
	if offset > hi {
		offset = hi
	}
	view.SetScrollOffset(offset)
}
