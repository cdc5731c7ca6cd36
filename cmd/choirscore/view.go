package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/novotnyt/choir-score-reader/internal/config"
	"github.com/novotnyt/choir-score-reader/internal/document"
	"github.com/novotnyt/choir-score-reader/internal/library"
	"github.com/novotnyt/choir-score-reader/internal/log"
	"github.com/novotnyt/choir-score-reader/internal/render"
	"github.com/novotnyt/choir-score-reader/internal/viewer"
)

// Default viewport size when the host has no window to measure.
const (
	defaultViewportWidth  = 800
	defaultViewportHeight = 1200
)

// NewViewCmd creates the view command.
func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <score-directory>",
		Short: "Open a score for an interactive viewing session",
		Long: `View opens a score (a directory of page images) as one continuous vertical
strip and starts an interactive session on the terminal.

Keys:
  n / j / space   jump to next anchor
  p / k           jump to previous anchor
  d / u           scroll half a viewport down / up
  + / =           zoom in
  -               zoom out
  0               reset zoom to fit width
  a               add an anchor at the top of the viewport
  s               save anchors
  l               reload anchors
  f               enter presentation mode
  ESC             leave presentation mode
  q               quit

The current viewport is written as a PNG after every change when --frame is
given, so the session can drive an external display.

Examples:
  # Open a score
  choirscore view ~/scores/magnificat

  # Drive a second screen through a PNG frame file
  choirscore view --frame /tmp/frame.png ~/scores/magnificat

  # Keep anchors somewhere other than next to the score
  choirscore view --anchors ~/rehearsal/magnificat.json ~/scores/magnificat`,
		Args: cobra.ExactArgs(1),
		RunE: runViewCmd,
	}

	cmd.Flags().StringP("anchors", "a", "",
		"Anchor file path (default: anchors_<score>.json next to the score)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .choirscore in current or home directory)")
	cmd.Flags().Float64P("zoom-step", "z", config.DefaultZoomStep,
		"Zoom multiplier per zoom action")
	cmd.Flags().Duration("scroll-duration", config.DefaultScrollDuration,
		"Animation time per anchor jump")
	cmd.Flags().Int("scroll-frames", config.DefaultScrollFrames,
		"Animation frames per anchor jump")
	cmd.Flags().Int("marker-thickness", config.DefaultMarkerThickness,
		"Anchor marker line height in pixels")
	cmd.Flags().Int("cache-scales", config.DefaultCacheScales,
		"How many rendered zoom levels to keep in memory")
	cmd.Flags().Int("decode-concurrency", config.DefaultDecodeConcurrency,
		"Concurrent page decodes during rendering")
	cmd.Flags().StringP("frame", "F", "",
		"Write the current viewport to this PNG after every change")
	cmd.Flags().Bool("no-library", false,
		"Do not record this session in the score library")
	cmd.Flags().String("library-dir", "",
		"Score library location (default: XDG data directory)")
	cmd.Flags().Int("width", defaultViewportWidth, "Viewport width in pixels")
	cmd.Flags().Int("height", defaultViewportHeight, "Viewport height in pixels")

	return cmd
}

// runViewCmd executes the view command.
func runViewCmd(cmd *cobra.Command, args []string) error {
	cfg, width, height, err := buildViewConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, closing session")
		cancel()
	}()

	return runView(ctx, cfg, width, height, cmd.InOrStdin(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildViewConfig creates a Config from cobra command flags.
func buildViewConfig(cmd *cobra.Command, args []string) (*config.Config, int, int, error) {
	cfg := config.NewConfig()
	cfg.DocumentPath = args[0]

	var err error

	cfg.AnchorPath, err = cmd.Flags().GetString("anchors")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.ZoomStep, err = cmd.Flags().GetFloat64("zoom-step")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.ScrollDuration, err = cmd.Flags().GetDuration("scroll-duration")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.ScrollFrames, err = cmd.Flags().GetInt("scroll-frames")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.MarkerThickness, err = cmd.Flags().GetInt("marker-thickness")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.CacheScales, err = cmd.Flags().GetInt("cache-scales")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.DecodeConcurrency, err = cmd.Flags().GetInt("decode-concurrency")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.FramePath, err = cmd.Flags().GetString("frame")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.NoLibrary, err = cmd.Flags().GetBool("no-library")
	if err != nil {
		return nil, 0, 0, err
	}
	cfg.LibraryDir, err = cmd.Flags().GetString("library-dir")
	if err != nil {
		return nil, 0, 0, err
	}
	if cfg.LibraryDir == "" {
		cfg.LibraryDir = config.XDGDataDir()
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, 0, 0, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise silently run with defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	} else if explicitConfigPath {
		return nil, 0, 0, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	width, err := cmd.Flags().GetInt("width")
	if err != nil {
		return nil, 0, 0, err
	}
	height, err := cmd.Flags().GetInt("height")
	if err != nil {
		return nil, 0, 0, err
	}

	return cfg, width, height, nil
}

// runView opens the document and runs the interactive session.
func runView(ctx context.Context, cfg *config.Config, width, height int, input io.Reader, logger *slog.Logger) error {
	doc, err := document.Open(cfg.DocumentPath)
	if err != nil {
		return fmt.Errorf("failed to open score: %w", err)
	}
	cfg.ApplyScoreOverrides(doc.BaseName())

	logger.Info("opened score",
		"path", doc.Path,
		"pages", doc.PageCount(),
		"fingerprint", doc.Fingerprint(),
	)

	ras := render.NewCache(
		render.NewImageDir(doc, render.WithDecodeConcurrency(cfg.DecodeConcurrency)),
		cfg.CacheScales,
	)
	view := newFrameViewport(width, height)

	v, err := viewer.New(ctx, doc, ras, view, viewer.Options{
		Logger:          logger,
		AnchorPath:      cfg.AnchorPath,
		ScrollDuration:  cfg.ScrollDuration,
		ScrollFrames:    cfg.ScrollFrames,
		MergeEpsilon:    cfg.MergeEpsilon,
		MarkerThickness: cfg.MarkerThickness,
	})
	if err != nil {
		return err
	}
	defer v.Close()

	// Load existing anchors; a score without an anchor file starts empty.
	if err := v.LoadAnchors(); err != nil {
		logger.Debug("no anchor file loaded", "error", err)
	}

	var lib *library.Library
	if !cfg.NoLibrary {
		lib, err = library.Open(cfg.LibraryDir, library.DefaultOptions())
		if err != nil {
			// The library is a convenience; a viewing session must not
			// fail because the data directory is unavailable.
			logger.Warn("score library unavailable", "error", err)
		} else {
			defer lib.Close()
			if err := lib.RecordSession(ctx, &library.Score{
				Fingerprint: doc.Fingerprint(),
				Path:        doc.Path,
				BaseName:    doc.BaseName(),
				PageCount:   doc.PageCount(),
			}); err != nil {
				logger.Warn("failed to record session", "error", err)
			}
		}
	}

	defer func() {
		if lib == nil {
			return
		}
		// Remember where the singer left off.
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer saveCancel()
		if err := lib.SaveLastPosition(saveCtx, doc.Fingerprint(), v.TopCoordinate()); err != nil {
			logger.Warn("failed to save last position", "error", err)
		}
	}()

	return runSession(ctx, cfg, v, view, input, logger)
}

// runSession runs the raw-terminal key loop until quit or cancellation.
func runSession(ctx context.Context, cfg *config.Config, v *viewer.Viewer, view *frameViewport, input io.Reader, logger *slog.Logger) error {
	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(int(f.Fd()), oldState)
		}()
	}

	if err := writeFrame(cfg.FramePath, v, view); err != nil {
		logger.Warn("failed to write frame", "error", err)
	}
	printStatus(os.Stdout, v)

	keyCh := make(chan byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := input.Read(buf)
			if err != nil {
				readErr <- err
				return
			}
			if n == 1 {
				select {
				case keyCh <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input read failed: %w", err)
		case b := <-keyCh:
			if b == 'q' || b == 3 { // 3 is Ctrl-C in raw mode
				return nil
			}
			handleKey(ctx, v, view, b)
			if err := writeFrame(cfg.FramePath, v, view); err != nil {
				logger.Warn("failed to write frame", "error", err)
			}
			printStatus(os.Stdout, v)
		}
	}
}

// handleKey maps one terminal byte onto an engine action.
func handleKey(ctx context.Context, v *viewer.Viewer, view *frameViewport, b byte) {
	switch b {
	case 'n', 'j', ' ':
		v.KeyDown(ctx, viewer.KeyNextAnchor)
	case 'p', 'k':
		v.KeyDown(ctx, viewer.KeyPrevAnchor)
	case '+', '=':
		v.KeyDown(ctx, viewer.KeyZoomIn)
	case '-':
		v.KeyDown(ctx, viewer.KeyZoomOut)
	case '0':
		v.KeyDown(ctx, viewer.KeyResetZoom)
	case 'a':
		v.KeyDown(ctx, viewer.KeyAddAnchorAtTop)
	case 's':
		v.KeyDown(ctx, viewer.KeySaveAnchors)
	case 'l':
		v.KeyDown(ctx, viewer.KeyLoadAnchors)
	case 'f':
		v.KeyDown(ctx, viewer.KeyTogglePresentation)
	case 0x1b: // ESC
		v.KeyDown(ctx, viewer.KeyExitPresentation)
	case 'd':
		view.scrollBy(0.5)
	case 'u':
		view.scrollBy(-0.5)
	default:
		v.KeyDown(ctx, viewer.KeyUnknown)
	}
}

// printStatus rewrites the raw-mode status line: score position, zoom, and
// anchor cursor.
func printStatus(out io.Writer, v *viewer.Viewer) {
	anchors := len(v.Anchors())
	cursor := v.Cursor()
	cursorText := "-"
	if cursor >= 0 {
		cursorText = fmt.Sprintf("%d/%d", cursor+1, anchors)
	}
	fmt.Fprintf(out, "\r\x1b[K[%s] top %.0f  zoom %.2fx  anchors %d  at %s",
		v.Mode(), float64(v.TopCoordinate()), v.RenderScale(), anchors, cursorText)
}

// writeFrame crops the composed strip to the viewport window and writes it
// as a PNG. A missing frame path disables frame output.
func writeFrame(path string, v *viewer.Viewer, view *frameViewport) error {
	if path == "" {
		return nil
	}

	strip := v.Frame()
	if strip == nil {
		return nil
	}

	window := view.window(strip)
	f, err := os.Create(path) //nolint:gosec // user-provided frame path is intentional
	if err != nil {
		return err
	}
	if err := png.Encode(f, window); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// frameViewport is the terminal host's viewport: a fixed-size window whose
// scroll state the engine drives. SetContentSize commits synchronously, as
// the engine's rescale protocol requires.
type frameViewport struct {
	mu sync.Mutex

	width, height      int
	contentW, contentH int
	offset             float64
}

func newFrameViewport(width, height int) *frameViewport {
	return &frameViewport{width: width, height: height}
}

// ScrollOffset returns the current vertical scroll position.
func (f *frameViewport) ScrollOffset() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offset
}

// SetScrollOffset moves the window, clamped to the scroll range.
func (f *frameViewport) SetScrollOffset(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lo, hi := f.rangeLocked()
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	f.offset = v
}

// ScrollRange returns the valid scroll offsets for the current content.
func (f *frameViewport) ScrollRange() (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rangeLocked()
}

func (f *frameViewport) rangeLocked() (float64, float64) {
	maxOff := float64(f.contentH - f.height)
	if maxOff < 0 {
		maxOff = 0
	}
	return 0, maxOff
}

// ViewportSize returns the window size in pixels.
func (f *frameViewport) ViewportSize() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

// SetContentSize commits the new content extent and re-clamps the offset
// before returning.
func (f *frameViewport) SetContentSize(w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contentW, f.contentH = w, h
	_, hi := f.rangeLocked()
	if f.offset > hi {
		f.offset = hi
	}
}

// scrollBy moves the window by the given fraction of its height.
func (f *frameViewport) scrollBy(fraction float64) {
	f.mu.Lock()
	delta := float64(f.height) * fraction
	target := f.offset + delta
	f.mu.Unlock()
	f.SetScrollOffset(target)
}

// window crops the composed strip to the visible region.
func (f *frameViewport) window(strip *image.RGBA) image.Image {
	f.mu.Lock()
	top := int(f.offset)
	h := f.height
	f.mu.Unlock()

	bounds := strip.Bounds()
	r := image.Rect(bounds.Min.X, bounds.Min.Y+top, bounds.Max.X, bounds.Min.Y+top+h)
	return strip.SubImage(r.Intersect(bounds))
}
