package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock returns a now func that advances by step on every call to
// advance.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestHandler(buf *bytes.Buffer, clock *fakeClock) *ThrottleHandler {
	h := NewThrottleHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}), 100*time.Millisecond)
	h.state.now = clock.now
	return h
}

func TestThrottleHandler_SuppressesRepeats(t *testing.T) {
	t.Parallel()

	t.Run("first record passes, repeats within window are dropped", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		clock := &fakeClock{t: time.Now()}
		logger := slog.New(newTestHandler(&buf, clock))

		logger.Debug("animation tick", "offset", 10.0)
		for range 5 {
			clock.advance(7 * time.Millisecond)
			logger.Debug("animation tick", "offset", 20.0)
		}

		got := strings.Count(buf.String(), "animation tick")
		if got != 1 {
			t.Errorf("emitted %d records, want 1\noutput:\n%s", got, buf.String())
		}
	})

	t.Run("record after the window carries the repeat count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		clock := &fakeClock{t: time.Now()}
		logger := slog.New(newTestHandler(&buf, clock))

		logger.Debug("animation tick")
		for range 4 {
			clock.advance(10 * time.Millisecond)
			logger.Debug("animation tick")
		}
		clock.advance(200 * time.Millisecond)
		logger.Debug("animation tick")

		out := buf.String()
		if got := strings.Count(out, "animation tick"); got != 2 {
			t.Fatalf("emitted %d records, want 2\noutput:\n%s", got, out)
		}
		if !strings.Contains(out, "repeated=4") {
			t.Errorf("missing repeat count\noutput:\n%s", out)
		}
	})

	t.Run("different messages do not throttle each other", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		clock := &fakeClock{t: time.Now()}
		logger := slog.New(newTestHandler(&buf, clock))

		logger.Debug("animation tick")
		clock.advance(time.Millisecond)
		logger.Debug("viewport resized")

		out := buf.String()
		if !strings.Contains(out, "animation tick") || !strings.Contains(out, "viewport resized") {
			t.Errorf("both messages should pass\noutput:\n%s", out)
		}
	})

	t.Run("warnings always pass through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		clock := &fakeClock{t: time.Now()}
		logger := slog.New(newTestHandler(&buf, clock))

		for range 3 {
			logger.Warn("render failed")
			clock.advance(time.Millisecond)
		}

		if got := strings.Count(buf.String(), "render failed"); got != 3 {
			t.Errorf("emitted %d warnings, want 3", got)
		}
	})
}

func TestThrottleHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	t.Run("derived logger shares throttle state", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		clock := &fakeClock{t: time.Now()}
		h := newTestHandler(&buf, clock)
		base := slog.New(h)
		derived := slog.New(h.WithAttrs([]slog.Attr{slog.String("score", "magnificat")}))

		base.Debug("animation tick")
		clock.advance(time.Millisecond)
		derived.Debug("animation tick")

		if got := strings.Count(buf.String(), "animation tick"); got != 1 {
			t.Errorf("emitted %d records, want 1", got)
		}
	})

	t.Run("base and derived loggers are safe to use concurrently", func(t *testing.T) {
		t.Parallel()

		h := NewThrottleHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}), time.Millisecond)
		base := slog.New(h)
		derived := slog.New(h.WithAttrs([]slog.Attr{slog.String("score", "magnificat")}))

		var wg sync.WaitGroup
		for _, logger := range []*slog.Logger{base, derived} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 200 {
					logger.Debug("animation tick", "offset", i)
				}
			}()
		}
		wg.Wait()
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("verbose logger emits debug records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("opened document", "pages", 4)

		if !strings.Contains(buf.String(), "opened document") {
			t.Errorf("debug record missing in verbose mode\noutput:\n%s", buf.String())
		}
	})

	t.Run("quiet logger suppresses debug and info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Debug("opened document")
		logger.Info("anchors saved")
		logger.Warn("anchor file missing")

		out := buf.String()
		if strings.Contains(out, "opened document") || strings.Contains(out, "anchors saved") {
			t.Errorf("low-level records should be suppressed\noutput:\n%s", out)
		}
		if !strings.Contains(out, "anchor file missing") {
			t.Errorf("warning should pass\noutput:\n%s", out)
		}
	})
}

func TestThrottleHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewThrottleHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}), 0)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled at info level")
	}
}
