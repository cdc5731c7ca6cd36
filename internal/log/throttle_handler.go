package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultThrottleWindow is how long a repeated message is suppressed after
// it was last emitted. One window is long enough to collapse a full anchor
// jump animation into two records (first tick and summary).
const DefaultThrottleWindow = 250 * time.Millisecond

// repeatCountKey is the attribute key added to a record that stands in for
// suppressed repeats of the same message.
const repeatCountKey = "repeated"

// throttleState is the suppression bookkeeping shared by a handler and
// every handler derived from it via WithAttrs or WithGroup. Keeping the
// mutex next to the maps it guards means derived handlers cannot end up
// locking different mutexes around the same maps.
type throttleState struct {
	mu sync.Mutex

	// lastSeen maps message to the time it last passed through.
	lastSeen map[string]time.Time

	// suppressed maps message to the count of records dropped since it
	// last passed through.
	suppressed map[string]int

	// now is swappable for tests.
	now func() time.Time
}

// ThrottleHandler wraps an slog.Handler to collapse bursts of identical
// messages. The first record of a burst passes through immediately;
// subsequent records with the same message within the throttle window are
// counted and suppressed. When the window expires the next record passes
// through carrying a "repeated" attribute with the suppressed count.
//
// Design decision: We use a handler wrapper rather than call-site rate
// limiting because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay free of timing logic
//
// Throttling keys on the record message only, not its attributes. Two
// ticks of the same animation differ in offset but are the same event for
// log-reading purposes.
type ThrottleHandler struct {
	// handler is the underlying slog handler that receives surviving
	// records.
	handler slog.Handler

	// window is the suppression interval per message.
	window time.Duration

	// state is shared across derived handlers so repeats are counted,
	// and locked, in one place.
	state *throttleState
}

// NewThrottleHandler creates a new ThrottleHandler wrapping the given
// handler. If handler is nil, the returned ThrottleHandler will use
// slog.Default().Handler(). A window of 0 or less uses
// DefaultThrottleWindow.
func NewThrottleHandler(handler slog.Handler, window time.Duration) *ThrottleHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	return &ThrottleHandler{
		handler: handler,
		window:  window,
		state: &throttleState{
			lastSeen:   make(map[string]time.Time),
			suppressed: make(map[string]int),
			now:        time.Now,
		},
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *ThrottleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle passes the record through unless an identical message was emitted
// within the throttle window. Warnings and errors always pass through; a
// burst of those is a problem worth seeing in full.
func (h *ThrottleHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.handler.Handle(ctx, r)
	}

	st := h.state
	st.mu.Lock()
	now := st.now()
	last, seen := st.lastSeen[r.Message]
	if seen && now.Sub(last) < h.window {
		st.suppressed[r.Message]++
		st.mu.Unlock()
		return nil
	}
	dropped := st.suppressed[r.Message]
	st.lastSeen[r.Message] = now
	st.suppressed[r.Message] = 0
	st.mu.Unlock()

	if dropped > 0 {
		annotated := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
		r.Attrs(func(a slog.Attr) bool {
			annotated.AddAttrs(a)
			return true
		})
		annotated.AddAttrs(slog.Int(repeatCountKey, dropped))
		return h.handler.Handle(ctx, annotated)
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes added.
// Throttle state is shared with the parent, under the parent's lock, so
// repeats are still counted across derived loggers.
func (h *ThrottleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ThrottleHandler{
		handler: h.handler.WithAttrs(attrs),
		window:  h.window,
		state:   h.state,
	}
}

// WithGroup returns a new handler with the given group name.
func (h *ThrottleHandler) WithGroup(name string) slog.Handler {
	return &ThrottleHandler{
		handler: h.handler.WithGroup(name),
		window:  h.window,
		state:   h.state,
	}
}

// NewLogger creates a new slog.Logger with throttled handling.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	throttleHandler := NewThrottleHandler(textHandler, DefaultThrottleWindow)

	return slog.New(throttleHandler)
}
