// Package compositor draws the anchor overlay onto rendered strips and owns
// the two-phase rescale that keeps the top-of-view position fixed across
// scale changes.
//
// The rescale is split into an explicit begin/complete pair because the
// scroll range a host reports is stale until its layout pass has applied the
// new content size. Restoring the offset against the stale range was the
// classic zoom bug; the two-phase API makes the ordering a type-level fact
// instead of a timing accident.
package compositor
