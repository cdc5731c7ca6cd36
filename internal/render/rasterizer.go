package render

import (
	"context"
	"image"
)

// Result is one full-document rasterization.
type Result struct {
	// Bitmap is the whole document stacked vertically: height is the sum
	// of the rendered page heights, width the widest rendered page, with
	// white fill in unused horizontal margins.
	Bitmap *image.RGBA

	// PageHeights holds the rendered height of each page in order. The
	// sum equals the bitmap height (up to per-page rounding).
	PageHeights []float64
}

// Rasterizer turns a document into a bitmap strip at a given scale.
//
// Render is a potentially slow synchronous call; hosts that care about
// responsiveness run it off the event thread and marshal the Result back.
// The context cancels an in-flight rasterization.
type Rasterizer interface {
	Render(ctx context.Context, scale float64) (*Result, error)
}
