// Package navigate drives movement between anchors.
//
// The Controller keeps a cursor over the anchor store and turns next/prev/
// jump requests into animated scroll transitions. The animation itself is a
// pure step function (Animation.Advance) so any host event loop can drive it
// from its own timer primitive, and tests can drive it without timers at
// all. A Runner is provided for hosts that just want a time.Ticker.
package navigate
