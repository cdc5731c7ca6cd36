package viewer

// Viewport is the scrollable window a host gives the engine onto the
// rendered strip.
//
// Ordering contract: SetContentSize must not return until the host has
// committed the new content dimensions, i.e. until ScrollRange reflects
// them. The engine restores the anchored scroll offset immediately after
// SetContentSize returns, and restoring against a stale range clamps to the
// wrong bounds. Hosts with asynchronous layout (most widget toolkits) must
// block or flush their layout pass inside SetContentSize.
type Viewport interface {
	// ScrollOffset returns the current vertical scroll offset in screen
	// pixels.
	ScrollOffset() float64

	// SetScrollOffset moves the viewport to the given vertical offset.
	// Hosts clamp into their own valid range.
	SetScrollOffset(v float64)

	// ScrollRange returns the valid scroll offset range.
	ScrollRange() (min, max float64)

	// ViewportSize returns the visible area in screen pixels.
	ViewportSize() (width, height int)

	// SetContentSize tells the host the rendered strip's new dimensions.
	// See the ordering contract above.
	SetContentSize(width, height int)
}
