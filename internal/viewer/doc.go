// Package viewer is the engine that ties the core together: it owns the
// coordinate space, anchor store, navigation controller, and render cache,
// and turns host input events into state changes and fresh frames.
//
// The engine is host-agnostic. A host supplies a Viewport (scrollable
// window onto the strip) and delivers KeyDown/MouseDown/Resize events from
// whatever widget or terminal loop it runs; the engine never imports a UI
// toolkit. All engine state is guarded internally, so hosts may deliver
// events from a different goroutine than the animation timer.
package viewer
