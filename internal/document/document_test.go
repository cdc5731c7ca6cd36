package document

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePage writes a solid-color PNG page for tests.
func writePage(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path) //nolint:gosec // test temp path
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck // test file
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// newScoreDir creates a three-page document directory.
func newScoreDir(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "ave-verum")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	writePage(t, filepath.Join(dir, "page-01.png"), 100, 140)
	writePage(t, filepath.Join(dir, "page-02.png"), 90, 150)
	writePage(t, filepath.Join(dir, "page-03.png"), 100, 140)
	return dir
}

// TestOpen tests document opening and page discovery.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("opens a directory of pages in name order", func(t *testing.T) {
		t.Parallel()
		doc, err := Open(newScoreDir(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.PageCount() != 3 {
			t.Fatalf("expected 3 pages, got %d", doc.PageCount())
		}
		if doc.Pages[1].Width != 90 || doc.Pages[1].Height != 150 {
			t.Errorf("page 2 dimensions wrong: %dx%d", doc.Pages[1].Width, doc.Pages[1].Height)
		}
		if doc.Fingerprint() == "" {
			t.Error("expected a non-empty fingerprint")
		}
	})

	t.Run("missing path returns ErrNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := Open(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("directory without pages returns ErrNoPages", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := Open(dir)
		if !errors.Is(err, ErrNoPages) {
			t.Errorf("expected ErrNoPages, got %v", err)
		}
	})
}

// TestFingerprintStability verifies the fingerprint depends on content, not
// location.
func TestFingerprintStability(t *testing.T) {
	t.Parallel()

	a, err := Open(newScoreDir(t))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Open(newScoreDir(t))
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical content in different directories should share a fingerprint")
	}
}

// TestDerivedNames tests base-name and anchor-file derivation.
func TestDerivedNames(t *testing.T) {
	t.Parallel()

	doc := &Document{Path: "/scores/ave-verum"}

	if got := doc.BaseName(); got != "ave-verum" {
		t.Errorf("expected base name 'ave-verum', got %q", got)
	}
	if got := doc.AnchorFileName(); got != "anchors_ave-verum.json" {
		t.Errorf("expected 'anchors_ave-verum.json', got %q", got)
	}
	if got := doc.AnchorFilePath(); got != filepath.Join("/scores", "anchors_ave-verum.json") {
		t.Errorf("unexpected anchor path %q", got)
	}
}

// TestBaseSize verifies stacked-strip geometry: width is the widest page,
// height the sum, both scaled.
func TestBaseSize(t *testing.T) {
	t.Parallel()

	doc, err := Open(newScoreDir(t))
	if err != nil {
		t.Fatal(err)
	}

	w, h := doc.BaseSize(2.0)
	if w != 200 {
		t.Errorf("expected width 200, got %v", w)
	}
	if h != float64(2*(140+150+140)) {
		t.Errorf("expected height 860, got %v", h)
	}
}
