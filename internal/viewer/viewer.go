package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/novotnyt/choir-score-reader/internal/anchor"
	"github.com/novotnyt/choir-score-reader/internal/compositor"
	"github.com/novotnyt/choir-score-reader/internal/coords"
	"github.com/novotnyt/choir-score-reader/internal/document"
	"github.com/novotnyt/choir-score-reader/internal/navigate"
	"github.com/novotnyt/choir-score-reader/internal/render"
)

// Viewer is the engine instance for one open document.
//
// Design decision: all mutable view state (scale, anchors, mode, cursor)
// lives on this one owned instance with no package-level globals. Methods
// lock internally, keeping the core's single-logical-thread contract even
// when a host delivers key events and timer ticks from different
// goroutines.
type Viewer struct {
	mu sync.Mutex

	doc   *document.Document
	space *coords.Space
	store *anchor.Store
	nav   *navigate.Controller
	ras   render.Rasterizer
	view  Viewport

	logger *slog.Logger

	mode  Mode
	strip *image.RGBA

	// anchorPath is where save/load read and write.
	anchorPath string

	// scrollDuration is the total animation time per jump.
	scrollDuration time.Duration

	markerThickness int
	markerColor     color.Color

	// animGen invalidates stale animation runners: each new jump bumps
	// it, and a runner whose generation no longer matches exits on its
	// next tick instead of double-driving the replacement animation.
	animGen uint64
	runner  *navigate.Runner
}

// Options configures a Viewer beyond its required collaborators.
type Options struct {
	// Logger for engine events. Defaults to slog.Default().
	Logger *slog.Logger

	// AnchorPath overrides the default anchor file location
	// (anchors_<base>.json next to the document).
	AnchorPath string

	// ScrollDuration is the total animation time per jump.
	ScrollDuration time.Duration

	// ScrollFrames is the animation frame count per jump.
	ScrollFrames int

	// MergeEpsilon is the anchor set-membership distance in document
	// units.
	MergeEpsilon float64

	// MarkerThickness is the overlay line height in pixels.
	MarkerThickness int

	// MarkerColor is the overlay line color.
	MarkerColor color.Color
}

// New creates a Viewer for the document, renders the initial strip at
// fit-to-width, and pushes it to the viewport.
func New(ctx context.Context, doc *document.Document, ras render.Rasterizer, view Viewport, opts Options) (*Viewer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := anchor.NewStore(0)
	if opts.MergeEpsilon > 0 {
		store.SetMergeEpsilon(opts.MergeEpsilon)
	}

	v := &Viewer{
		doc:             doc,
		space:           coords.NewSpace(),
		store:           store,
		ras:             ras,
		view:            view,
		logger:          logger,
		anchorPath:      opts.AnchorPath,
		scrollDuration:  navigate.DefaultScrollDuration,
		markerThickness: compositor.DefaultMarkerThickness,
		markerColor:     compositor.DefaultMarkerColor,
	}
	if v.anchorPath == "" {
		v.anchorPath = doc.AnchorFilePath()
	}
	if opts.ScrollDuration > 0 {
		v.scrollDuration = opts.ScrollDuration
	}
	if opts.MarkerThickness > 0 {
		v.markerThickness = opts.MarkerThickness
	}
	if opts.MarkerColor != nil {
		v.markerColor = opts.MarkerColor
	}

	v.nav = navigate.NewController(store, v.space, view)
	if opts.ScrollFrames > 0 {
		v.nav.SetFrames(opts.ScrollFrames)
	}

	// ScreenToDocument divides by the full render scale, so document
	// space is native page-pixel units; the store clamps against the
	// native height. Fit-to-width compares against the base render's
	// width, which is what the viewport shows at user scale 1.
	baseW, _ := doc.BaseSize(v.space.BaseScale())
	_, nativeH := doc.BaseSize(1.0)
	store.SetDocumentHeight(nativeH)

	// Initial fit and render.
	vw, _ := view.ViewportSize()
	v.space.ApplyFitWidth(float64(vw), baseW)
	if err := v.renderLocked(ctx); err != nil {
		return nil, fmt.Errorf("initial render failed: %w", err)
	}
	return v, nil
}

// Document returns the open document.
func (v *Viewer) Document() *document.Document {
	return v.doc
}

// Mode returns the current display mode.
func (v *Viewer) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// Anchors returns the current anchor set in ascending order.
func (v *Viewer) Anchors() []coords.Coordinate {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.All()
}

// Cursor returns the current anchor index, or -1 when unset.
func (v *Viewer) Cursor() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nav.Cursor()
}

// RenderScale returns the effective render scale in use.
func (v *Viewer) RenderScale() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.space.RenderScale()
}

// TopCoordinate returns the document coordinate at the top of the viewport.
func (v *Viewer) TopCoordinate() coords.Coordinate {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.space.ScreenToDocument(v.view.ScrollOffset())
}

// Frame returns the strip with the anchor overlay composited, ready for
// display. The returned image is a copy; the cached strip stays clean.
func (v *Viewer) Frame() *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()

	frame := compositor.CloneStrip(v.strip)
	compositor.Overlay(frame, v.store.All(), v.space, v.markerThickness, v.markerColor, v.mode == ModePresentation)
	return frame
}

// KeyDown dispatches one key action. Unknown keys are ignored. In
// presentation mode the editing actions (save, load, add-at-top, toggle)
// are ignored; navigation, zoom, and exit stay live.
func (v *Viewer) KeyDown(ctx context.Context, key Key) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.mode == ModePresentation {
		switch key {
		case KeySaveAnchors, KeyLoadAnchors, KeyAddAnchorAtTop, KeyTogglePresentation:
			v.logger.Debug("editing key ignored in presentation mode", "key", key.String())
			return
		}
	}

	switch key {
	case KeyNextAnchor:
		v.jumpLocked(v.nav.Next)
	case KeyPrevAnchor:
		v.jumpLocked(v.nav.Prev)
	case KeyZoomIn:
		v.rescaleLocked(ctx, v.space.ZoomIn)
	case KeyZoomOut:
		v.rescaleLocked(ctx, v.space.ZoomOut)
	case KeyResetZoom:
		v.rescaleLocked(ctx, func() {
			v.space.ResetZoom()
			vw, _ := v.view.ViewportSize()
			baseW, _ := v.doc.BaseSize(v.space.BaseScale())
			v.space.ApplyFitWidth(float64(vw), baseW)
		})
	case KeySaveAnchors:
		v.saveLocked()
	case KeyLoadAnchors:
		v.loadLocked()
	case KeyTogglePresentation:
		v.setModeLocked(ModePresentation)
	case KeyExitPresentation:
		if v.mode == ModePresentation {
			v.setModeLocked(ModeNormal)
		}
	case KeyAddAnchorAtTop:
		c := v.space.ScreenToDocument(v.view.ScrollOffset())
		if v.store.Add(c) {
			v.logger.Info("anchor added at viewport top", "coordinate", float64(c))
		} else {
			v.logger.Debug("anchor at viewport top merged into existing", "coordinate", float64(c))
		}
	case KeyUnknown:
		// Ignored.
	}
}

// MouseDown handles a click at content-relative pixel coordinates (pixel
// space of the current rendered strip, not the viewport). Left adds an
// anchor, right removes the nearest. In presentation mode clicks are
// ignored entirely.
func (v *Viewer) MouseDown(button MouseButton, pixelX, pixelY float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.mode == ModePresentation {
		v.logger.Debug("mouse ignored in presentation mode")
		return
	}
	_ = pixelX // anchors are vertical-only marks

	c := v.space.ScreenToDocument(pixelY)
	switch button {
	case MouseLeft:
		if v.store.Add(c) {
			v.logger.Info("anchor added", "coordinate", float64(c), "click_y", pixelY)
		}
	case MouseRight:
		removed, err := v.store.RemoveNearest(c)
		if err != nil {
			v.logger.Debug("no anchor to remove")
			return
		}
		v.logger.Info("anchor removed", "coordinate", float64(removed), "near", float64(c))
	}
}

// Resize informs the engine of a new viewport size. While fit-to-width mode
// is active this recomputes the scale and re-renders through the same
// top-fixed rescale path as an explicit zoom.
func (v *Viewer) Resize(ctx context.Context, width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.space.FitToWidth() {
		return
	}
	baseW, _ := v.doc.BaseSize(v.space.BaseScale())
	v.rescaleLocked(ctx, func() {
		v.space.ApplyFitWidth(float64(width), baseW)
	})
}

// SaveAnchors writes the anchor file, honoring an explicit path override.
func (v *Viewer) SaveAnchors() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.Save(v.anchorPath)
}

// LoadAnchors reloads the anchor file and resets the cursor. A failed load
// leaves the current anchors in place.
func (v *Viewer) LoadAnchors() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.store.Load(v.anchorPath); err != nil {
		return err
	}
	v.nav.ResetCursor()
	return nil
}

// Close stops any running animation. The viewer must not be used after
// Close.
func (v *Viewer) Close() {
	v.mu.Lock()
	v.animGen++
	runner := v.runner
	v.runner = nil
	v.mu.Unlock()

	if runner != nil {
		runner.Stop()
	}
}

// jumpLocked runs a navigation request and, on success, starts a timer that
// drives the animation to completion. A stale runner from a superseded jump
// self-retires via the generation check.
func (v *Viewer) jumpLocked(request func() error) {
	if err := request(); err != nil {
		if errors.Is(err, navigate.ErrNoAnchors) {
			v.logger.Warn("no anchors set")
			return
		}
		v.logger.Error("navigation failed", "error", err)
		return
	}

	target, _ := v.nav.Target()
	v.logger.Debug("scrolling to anchor",
		"index", v.nav.Cursor(),
		"target", target,
		"scale", v.space.RenderScale(),
	)

	v.animGen++
	gen := v.animGen
	interval := v.nav.TickInterval(v.scrollDuration)
	v.runner = navigate.StartRunner(interval, func() bool {
		return v.tick(gen)
	})
}

// tick advances the animation one frame unless this runner was superseded.
func (v *Viewer) tick(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.animGen {
		return true
	}
	return v.nav.Tick()
}

// rescaleLocked applies a scale mutation through the two-phase top-fixed
// rescale: capture, mutate, re-render, push the new content size, restore.
func (v *Viewer) rescaleLocked(ctx context.Context, mutate func()) {
	pending := compositor.BeginRescale(v.space, v.view)
	before := v.space.RenderScale()
	mutate()
	if v.space.RenderScale() == before {
		return
	}

	if err := v.renderLocked(ctx); err != nil {
		// Keep showing the old strip at the old scale rather than
		// dying mid-session.
		v.logger.Error("re-render failed, keeping previous scale", "error", err)
		return
	}
	pending.Complete(v.space, v.view)

	v.logger.Debug("rescaled",
		"scale", v.space.RenderScale(),
		"fit_to_width", v.space.FitToWidth(),
		"top", float64(pending.Top()),
	)
}

// renderLocked rasterizes at the current scale and pushes the new strip and
// content size to the host. SetContentSize must commit layout before
// returning (see Viewport), so callers may clamp against the scroll range
// immediately afterwards.
func (v *Viewer) renderLocked(ctx context.Context) error {
	res, err := v.ras.Render(ctx, v.space.RenderScale())
	if err != nil {
		return err
	}
	v.strip = res.Bitmap
	b := res.Bitmap.Bounds()
	v.view.SetContentSize(b.Dx(), b.Dy())
	return nil
}

// saveLocked persists anchors with logging, for the key path.
func (v *Viewer) saveLocked() {
	if err := v.store.Save(v.anchorPath); err != nil {
		v.logger.Error("failed to save anchors", "path", v.anchorPath, "error", err)
		return
	}
	v.logger.Info("anchors saved", "path", v.anchorPath, "count", v.store.Len())
}

// loadLocked reloads anchors with logging, for the key path. Failure leaves
// the prior set intact.
func (v *Viewer) loadLocked() {
	if err := v.store.Load(v.anchorPath); err != nil {
		v.logger.Warn("failed to load anchors, keeping current set", "path", v.anchorPath, "error", err)
		return
	}
	v.nav.ResetCursor()
	v.logger.Info("anchors loaded", "path", v.anchorPath, "count", v.store.Len())
}

// setModeLocked switches display mode.
func (v *Viewer) setModeLocked(m Mode) {
	if v.mode == m {
		return
	}
	v.mode = m
	v.logger.Info("mode changed", "mode", m.String())
}
