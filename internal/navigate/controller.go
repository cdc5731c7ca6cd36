package navigate

import (
	"errors"
	"fmt"
	"time"

	"github.com/novotnyt/choir-score-reader/internal/anchor"
	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// ErrNoAnchors is returned by navigation requests when the store is empty.
// This is a reportable no-op, not a failure: the viewer logs it and keeps
// running.
var ErrNoAnchors = errors.New("no anchors set")

// State is the navigation state machine.
type State int

const (
	// Idle means no scroll transition is in progress.
	Idle State = iota

	// Animating means a scroll transition is advancing toward a target.
	Animating
)

// String returns a human-readable state name for logging.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Animating:
		return "animating"
	default:
		return "unknown"
	}
}

// cursorUnset marks that no anchor has been visited yet. The first Next()
// then lands on index 0 and the first Prev() wraps to the last anchor.
const cursorUnset = -1

// Scroller is the slice of the viewport the controller needs: a readable,
// writable scroll offset and its valid range.
type Scroller interface {
	// ScrollOffset returns the current vertical scroll offset in screen
	// pixels.
	ScrollOffset() float64

	// SetScrollOffset moves the viewport to the given vertical offset.
	SetScrollOffset(v float64)

	// ScrollRange returns the valid scroll offset range.
	ScrollRange() (min, max float64)
}

// Controller owns the anchor cursor and the animated-scroll state machine.
//
// It is host-loop-agnostic: starting a jump plans an Animation, and the host
// calls Tick once per timer period until it reports done. A new jump while
// animating replaces the plan, starting fresh from the live offset; there is
// no queuing and interruption is silent.
type Controller struct {
	store *anchor.Store
	space *coords.Space
	view  Scroller

	cursor int
	state  State
	anim   *Animation

	frames int
}

// NewController creates a Controller over the given store, coordinate space,
// and viewport with the cursor unset.
func NewController(store *anchor.Store, space *coords.Space, view Scroller) *Controller {
	return &Controller{
		store:  store,
		space:  space,
		view:   view,
		cursor: cursorUnset,
		frames: DefaultScrollFrames,
	}
}

// SetFrames overrides the animation frame count. Values below 1 are ignored.
func (c *Controller) SetFrames(n int) {
	if n >= 1 {
		c.frames = n
	}
}

// State returns the current navigation state.
func (c *Controller) State() State {
	return c.state
}

// Cursor returns the current anchor index, or -1 if unset.
func (c *Controller) Cursor() int {
	return c.cursor
}

// ResetCursor marks the cursor unset. Called whenever the anchor store is
// reloaded from persistence, since old indexes no longer mean anything.
func (c *Controller) ResetCursor() {
	c.cursor = cursorUnset
	c.cancel()
}

// Next advances the cursor circularly forward and starts a jump to that
// anchor. Returns ErrNoAnchors when the store is empty.
func (c *Controller) Next() error {
	if c.store.Len() == 0 {
		return ErrNoAnchors
	}
	if c.cursor < c.store.Len()-1 {
		c.cursor++
	} else {
		c.cursor = 0
	}
	c.startJump(c.cursor)
	return nil
}

// Prev moves the cursor circularly backward and starts a jump to that
// anchor. An unset cursor wraps to the last anchor, matching the intuition
// that "back" from nowhere means the end of the document's marks.
func (c *Controller) Prev() error {
	if c.store.Len() == 0 {
		return ErrNoAnchors
	}
	if c.cursor > 0 {
		c.cursor--
	} else {
		c.cursor = c.store.Len() - 1
	}
	c.startJump(c.cursor)
	return nil
}

// JumpTo starts a jump directly to the anchor at index i.
func (c *Controller) JumpTo(i int) error {
	if c.store.Len() == 0 {
		return ErrNoAnchors
	}
	if i < 0 || i >= c.store.Len() {
		return fmt.Errorf("anchor index %d out of range [0,%d)", i, c.store.Len())
	}
	c.cursor = i
	c.startJump(i)
	return nil
}

// Target returns the planned destination offset, or 0 and false when idle.
func (c *Controller) Target() (float64, bool) {
	if c.anim == nil {
		return 0, false
	}
	return c.anim.Target(), true
}

// Tick advances the active animation by one frame, writing the new offset to
// the viewport. It returns true when the transition is complete (or when
// there is no transition), at which point the controller is Idle again and
// the host should stop its timer.
func (c *Controller) Tick() bool {
	if c.state != Animating || c.anim == nil {
		return true
	}
	next, done := c.anim.Advance(c.view.ScrollOffset())
	c.view.SetScrollOffset(next)
	if done {
		c.cancel()
	}
	return done
}

// TickInterval returns the timer period that spreads the given total
// duration across the configured frame count.
func (c *Controller) TickInterval(total time.Duration) time.Duration {
	return total / time.Duration(c.frames)
}

// startJump plans an animation from the live offset to the anchor's screen
// position, clamped into the valid scroll range. Any in-flight animation is
// superseded: the new plan starts from wherever the viewport actually is.
func (c *Controller) startJump(index int) {
	target := c.space.DocumentToScreen(c.store.At(index))
	lo, hi := c.view.ScrollRange()
	if target < lo {
		target = lo
	}
	if target > hi {
		target = hi
	}
	c.anim = NewAnimation(c.view.ScrollOffset(), target, c.frames)
	c.state = Animating
}

// cancel drops the active animation and returns to Idle. Always silent.
func (c *Controller) cancel() {
	c.anim = nil
	c.state = Idle
}
