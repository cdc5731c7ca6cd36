package coords

import "math"

// Default scale parameters.
// These values are chosen to match typical sheet-music reading setups and
// can be overridden through the configuration file.
const (
	// DefaultBaseScale is the fixed scale at which the base render is
	// produced. 2.0 gives enough resolution that zooming in up to roughly
	// 200% stays sharp without re-rasterizing the source document.
	DefaultBaseScale = 2.0

	// DefaultZoomStep is the multiplier applied per zoom-in action (and
	// divided out per zoom-out). A large step suits performance use: one
	// or two keystrokes reach a useful zoom level without a key-repeat
	// barrage mid-song.
	DefaultZoomStep = 1.85

	// MinUserScale is the floor for the user scale. The scale must never
	// reach zero or go negative, because document coordinates are derived
	// by dividing by it.
	MinUserScale = 0.01
)

// Coordinate is a vertical position in document space: native page-pixel
// units, invariant across zoom changes. This is the canonical unit in which
// anchors are stored, never screen pixels and never scaled-image pixels.
type Coordinate float64

// Space converts between document space and screen space.
//
// The effective render scale is baseScale × userScale. The user scale is
// either explicit (set by zoom actions) or derived continuously from the
// viewport width while fit-to-width mode is active.
type Space struct {
	// baseScale is the fixed scale of the base render. Immutable after
	// construction.
	baseScale float64

	// userScale is the zoom multiplier controlled by the user.
	userScale float64

	// zoomStep is the multiplier applied per zoom action.
	zoomStep float64

	// fitToWidth reports whether the user scale is currently slaved to
	// the viewport width. Explicit zoom is a one-way exit from this mode
	// until ResetZoom is called.
	fitToWidth bool
}

// Option configures a Space.
type Option func(*Space)

// WithBaseScale overrides the base render scale.
// Non-positive values are ignored.
func WithBaseScale(s float64) Option {
	return func(sp *Space) {
		if s > 0 {
			sp.baseScale = s
		}
	}
}

// WithZoomStep overrides the per-action zoom multiplier.
// Values not greater than 1 are ignored, since a step of 1 or below would
// make zoom-in a no-op or an inversion.
func WithZoomStep(s float64) Option {
	return func(sp *Space) {
		if s > 1 {
			sp.zoomStep = s
		}
	}
}

// NewSpace creates a Space in fit-to-width mode with user scale 1.
//
// Design decision: fit-to-width is the initial mode because the viewer opens
// documents whose native width rarely matches the window, and the original
// behavior users expect is "fill the width until I say otherwise".
func NewSpace(opts ...Option) *Space {
	sp := &Space{
		baseScale:  DefaultBaseScale,
		userScale:  1.0,
		zoomStep:   DefaultZoomStep,
		fitToWidth: true,
	}
	for _, opt := range opts {
		opt(sp)
	}
	return sp
}

// RenderScale returns the effective pixels-per-document-unit ratio,
// baseScale × userScale. Always positive.
func (sp *Space) RenderScale() float64 {
	return sp.baseScale * sp.userScale
}

// UserScale returns the current zoom multiplier.
func (sp *Space) UserScale() float64 {
	return sp.userScale
}

// BaseScale returns the fixed base render scale.
func (sp *Space) BaseScale() float64 {
	return sp.baseScale
}

// FitToWidth reports whether fit-to-width mode is active.
func (sp *Space) FitToWidth() bool {
	return sp.fitToWidth
}

// ScreenToDocument converts a vertical pixel position within the current
// rendered image to document space.
func (sp *Space) ScreenToDocument(pixelY float64) Coordinate {
	return Coordinate(pixelY / sp.RenderScale())
}

// DocumentToScreen converts a document-space position to a vertical pixel
// position within the current rendered image. The result is not rounded;
// callers round at the point of use so repeated conversions never accumulate
// rounding error.
func (sp *Space) DocumentToScreen(c Coordinate) float64 {
	return float64(c) * sp.RenderScale()
}

// DocumentToScreenPx is DocumentToScreen rounded to the nearest integer
// pixel, for callers that address pixels directly.
func (sp *Space) DocumentToScreenPx(c Coordinate) int {
	return int(math.Round(sp.DocumentToScreen(c)))
}

// FitWidthScale computes the user scale that makes the rendered width equal
// the viewport width. A base image width of zero or less is treated as 1 so
// a degenerate document cannot produce a division fault.
func FitWidthScale(viewportWidth, baseImageWidth float64) float64 {
	if baseImageWidth <= 0 {
		baseImageWidth = 1
	}
	if viewportWidth <= 0 {
		viewportWidth = 1
	}
	return clampScale(viewportWidth / baseImageWidth)
}

// ApplyFitWidth recomputes the user scale from the given widths. It has no
// effect unless fit-to-width mode is active. It reports whether the user
// scale changed.
//
// baseImageWidth is the width of the base render in pixels, so the rendered
// width at user scale u is baseImageWidth × u.
func (sp *Space) ApplyFitWidth(viewportWidth, baseImageWidth float64) bool {
	if !sp.fitToWidth {
		return false
	}
	s := FitWidthScale(viewportWidth, baseImageWidth)
	if s == sp.userScale {
		return false
	}
	sp.userScale = s
	return true
}

// ZoomIn multiplies the user scale by the zoom step and leaves fit-to-width
// mode. Leaving the mode is one-way: only ResetZoom re-enters it.
func (sp *Space) ZoomIn() {
	sp.fitToWidth = false
	sp.userScale = clampScale(sp.userScale * sp.zoomStep)
}

// ZoomOut divides the user scale by the zoom step and leaves fit-to-width
// mode.
func (sp *Space) ZoomOut() {
	sp.fitToWidth = false
	sp.userScale = clampScale(sp.userScale / sp.zoomStep)
}

// ResetZoom re-enables fit-to-width mode. The caller is expected to follow
// up with ApplyFitWidth once the current viewport width is known.
func (sp *Space) ResetZoom() {
	sp.fitToWidth = true
}

// SetUserScale sets the user scale directly (clamped) and leaves
// fit-to-width mode. Used when restoring a saved session.
func (sp *Space) SetUserScale(s float64) {
	sp.fitToWidth = false
	sp.userScale = clampScale(s)
}

// clampScale enforces the positive floor on user scales.
func clampScale(s float64) float64 {
	if s < MinUserScale || math.IsNaN(s) {
		return MinUserScale
	}
	return s
}
