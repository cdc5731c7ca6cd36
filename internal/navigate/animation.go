package navigate

import "time"

// Animation timing defaults. Tunable through the configuration file.
const (
	// DefaultScrollDuration is the total travel time of an anchor jump.
	// 200ms is long enough to preserve visual continuity (the eye tracks
	// where the page went) and short enough not to lag a performance.
	DefaultScrollDuration = 200 * time.Millisecond

	// DefaultScrollFrames divides the duration into fixed steps. Fewer
	// frames travel faster per tick and feel snappier; more frames are
	// smoother. 30 frames over 200ms is ~6.7ms per tick.
	DefaultScrollFrames = 30
)

// Animation is the transient state of one scroll transition: a fixed
// per-tick delta from start to target. It is pure data plus a step function,
// with no timer of its own.
type Animation struct {
	target float64
	delta  float64
	frames int
}

// NewAnimation plans a transition from start to target over the given frame
// count. A frame count below 1 is treated as 1, which degenerates into an
// immediate snap.
func NewAnimation(start, target float64, frames int) *Animation {
	if frames < 1 {
		frames = 1
	}
	return &Animation{
		target: target,
		delta:  (target - start) / float64(frames),
		frames: frames,
	}
}

// Target returns the destination offset.
func (a *Animation) Target() float64 {
	return a.target
}

// Advance computes the offset for the next tick given the current live
// offset. It reports done=true when the target has been reached, in which
// case next is exactly the target.
//
// The overshoot check is direction-sensitive: the delta's sign depends on
// whether the jump scrolls down or up, so a plain magnitude comparison would
// mistake an upward jump for an immediate arrival.
func (a *Animation) Advance(current float64) (next float64, done bool) {
	next = current + a.delta
	if (a.delta > 0 && next >= a.target) || (a.delta < 0 && next <= a.target) || a.delta == 0 {
		return a.target, true
	}
	return next, false
}

// TickInterval returns the timer period that spreads the given total
// duration across this animation's frames.
func (a *Animation) TickInterval(total time.Duration) time.Duration {
	return total / time.Duration(a.frames)
}
