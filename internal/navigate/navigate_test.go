package navigate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/novotnyt/choir-score-reader/internal/anchor"
	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// fakeScroller is an in-memory viewport for tests.
type fakeScroller struct {
	offset float64
	min    float64
	max    float64
}

func (f *fakeScroller) ScrollOffset() float64     { return f.offset }
func (f *fakeScroller) SetScrollOffset(v float64) { f.offset = v }
func (f *fakeScroller) ScrollRange() (float64, float64) {
	return f.min, f.max
}

// newFixture builds a controller over anchors [5, 15, 25] at render scale 1.
func newFixture(t *testing.T) (*Controller, *fakeScroller, *anchor.Store) {
	t.Helper()

	store := anchor.NewStore(10000)
	for _, c := range []coords.Coordinate{5, 15, 25} {
		store.Add(c)
	}
	space := coords.NewSpace(coords.WithBaseScale(1.0))
	space.SetUserScale(1.0)
	view := &fakeScroller{max: 10000}
	return NewController(store, space, view), view, store
}

// TestAnimationAdvance tests the pure step function including the
// direction-sensitive overshoot handling.
func TestAnimationAdvance(t *testing.T) {
	t.Parallel()

	t.Run("downward jump snaps exactly to target", func(t *testing.T) {
		t.Parallel()
		a := NewAnimation(0, 120, 30)
		offset, done := 0.0, false
		ticks := 0
		for !done {
			offset, done = a.Advance(offset)
			ticks++
			if ticks > 31 {
				t.Fatal("animation never completed")
			}
		}
		if offset != 120 {
			t.Errorf("expected exact landing at 120, got %v", offset)
		}
		if ticks != 30 {
			t.Errorf("expected 30 ticks, got %d", ticks)
		}
	})

	t.Run("upward jump snaps exactly to target", func(t *testing.T) {
		t.Parallel()
		a := NewAnimation(100, 0, 30)
		offset, done := 100.0, false
		for !done {
			offset, done = a.Advance(offset)
		}
		if offset != 0 {
			t.Errorf("expected exact landing at 0, got %v", offset)
		}
	})

	t.Run("zero-distance jump completes immediately", func(t *testing.T) {
		t.Parallel()
		a := NewAnimation(50, 50, 30)
		offset, done := a.Advance(50)
		if !done || offset != 50 {
			t.Errorf("expected immediate completion at 50, got %v done=%v", offset, done)
		}
	})

	t.Run("an external nudge past the target still terminates", func(t *testing.T) {
		t.Parallel()
		a := NewAnimation(0, 100, 10)
		// The live offset has moved past the target between ticks.
		offset, done := a.Advance(150)
		if !done || offset != 100 {
			t.Errorf("expected snap to 100, got %v done=%v", offset, done)
		}
	})

	t.Run("frame count below one degenerates to a snap", func(t *testing.T) {
		t.Parallel()
		a := NewAnimation(0, 80, 0)
		offset, done := a.Advance(0)
		if !done || offset != 80 {
			t.Errorf("expected immediate snap to 80, got %v done=%v", offset, done)
		}
	})
}

// TestCircularNavigation tests wrap behavior from an unset cursor.
func TestCircularNavigation(t *testing.T) {
	t.Parallel()

	t.Run("next advances 0, 1 then prev from 0 wraps to last", func(t *testing.T) {
		t.Parallel()
		c, _, _ := newFixture(t)

		if err := c.Next(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Cursor() != 0 {
			t.Errorf("expected cursor 0, got %d", c.Cursor())
		}

		if err := c.Next(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Cursor() != 1 {
			t.Errorf("expected cursor 1, got %d", c.Cursor())
		}

		// Back to 0, then prev must wrap to the last index.
		if err := c.Prev(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Cursor() != 0 {
			t.Errorf("expected cursor 0, got %d", c.Cursor())
		}
		if err := c.Prev(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Cursor() != 2 {
			t.Errorf("expected wrap to cursor 2, got %d", c.Cursor())
		}
	})

	t.Run("next wraps from last to first", func(t *testing.T) {
		t.Parallel()
		c, _, _ := newFixture(t)
		for range 3 {
			if err := c.Next(); err != nil {
				t.Fatal(err)
			}
		}
		if err := c.Next(); err != nil {
			t.Fatal(err)
		}
		if c.Cursor() != 0 {
			t.Errorf("expected wrap to cursor 0, got %d", c.Cursor())
		}
	})

	t.Run("empty store returns ErrNoAnchors without state change", func(t *testing.T) {
		t.Parallel()
		store := anchor.NewStore(1000)
		space := coords.NewSpace()
		view := &fakeScroller{}
		c := NewController(store, space, view)

		if err := c.Next(); !errors.Is(err, ErrNoAnchors) {
			t.Errorf("expected ErrNoAnchors, got %v", err)
		}
		if c.Cursor() != -1 {
			t.Errorf("cursor moved on empty store: %d", c.Cursor())
		}
		if c.State() != Idle {
			t.Errorf("state changed on empty store: %v", c.State())
		}
	})
}

// TestJumpAnimatesToAnchor drives a full jump through Tick and checks the
// landing position and state transitions.
func TestJumpAnimatesToAnchor(t *testing.T) {
	t.Parallel()

	c, view, _ := newFixture(t)

	if err := c.JumpTo(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State() != Animating {
		t.Fatalf("expected Animating, got %v", c.State())
	}
	if target, ok := c.Target(); !ok || target != 25 {
		t.Fatalf("expected target 25, got %v (ok=%v)", target, ok)
	}

	ticks := 0
	for !c.Tick() {
		ticks++
		if ticks > DefaultScrollFrames+1 {
			t.Fatal("animation never completed")
		}
	}
	if view.offset != 25 {
		t.Errorf("expected final offset 25, got %v", view.offset)
	}
	if c.State() != Idle {
		t.Errorf("expected Idle after completion, got %v", c.State())
	}
}

// TestJumpSupersedesAnimation verifies that a new request while animating
// replans from the live offset with no queuing.
func TestJumpSupersedesAnimation(t *testing.T) {
	t.Parallel()

	c, view, _ := newFixture(t)
	c.SetFrames(10)

	if err := c.JumpTo(2); err != nil {
		t.Fatal(err)
	}
	c.Tick()
	c.Tick()
	mid := view.offset
	if mid == 0 || mid == 25 {
		t.Fatalf("expected a mid-flight offset, got %v", mid)
	}

	// Supersede: jump back to the first anchor.
	if err := c.JumpTo(0); err != nil {
		t.Fatal(err)
	}
	if target, ok := c.Target(); !ok || target != 5 {
		t.Fatalf("expected new target 5, got %v (ok=%v)", target, ok)
	}

	for !c.Tick() {
	}
	if view.offset != 5 {
		t.Errorf("expected final offset 5, got %v", view.offset)
	}
}

// TestJumpClampsToScrollRange verifies targets outside the scrollable range
// clamp to its edges.
func TestJumpClampsToScrollRange(t *testing.T) {
	t.Parallel()

	c, view, _ := newFixture(t)
	view.max = 20 // the anchor at 25 is past the scrollable end

	if err := c.JumpTo(2); err != nil {
		t.Fatal(err)
	}
	if target, ok := c.Target(); !ok || target != 20 {
		t.Errorf("expected clamped target 20, got %v (ok=%v)", target, ok)
	}
}

// TestTargetScalesWithZoom verifies the scroll target reflects the current
// render scale.
func TestTargetScalesWithZoom(t *testing.T) {
	t.Parallel()

	store := anchor.NewStore(10000)
	store.Add(100)
	space := coords.NewSpace(coords.WithBaseScale(1.0))
	space.SetUserScale(2.0)
	view := &fakeScroller{max: 100000}
	c := NewController(store, space, view)

	if err := c.JumpTo(0); err != nil {
		t.Fatal(err)
	}
	target, ok := c.Target()
	if !ok || math.Abs(target-200) > 1e-9 {
		t.Errorf("expected target 200 at scale 2.0, got %v (ok=%v)", target, ok)
	}
}

// TestResetCursor verifies a reload-style reset drops both cursor and any
// in-flight animation.
func TestResetCursor(t *testing.T) {
	t.Parallel()

	c, _, _ := newFixture(t)
	if err := c.Next(); err != nil {
		t.Fatal(err)
	}
	c.ResetCursor()
	if c.Cursor() != -1 {
		t.Errorf("expected unset cursor, got %d", c.Cursor())
	}
	if c.State() != Idle {
		t.Errorf("expected Idle after reset, got %v", c.State())
	}
}

// TestRunner drives a real timer briefly to confirm the runner stops on
// completion and on explicit Stop.
func TestRunner(t *testing.T) {
	t.Parallel()

	t.Run("runs until tick reports done", func(t *testing.T) {
		t.Parallel()
		count := 0
		done := make(chan struct{})
		r := StartRunner(time.Millisecond, func() bool {
			count++
			if count >= 3 {
				close(done)
				return true
			}
			return false
		})
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("runner never completed")
		}
		r.Stop()
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		t.Parallel()
		r := StartRunner(time.Millisecond, func() bool { return false })
		r.Stop()
		r.Stop()
	})
}
