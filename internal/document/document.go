package document

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"

	// Register decoders for the page formats the viewer accepts.
	_ "image/jpeg"
	_ "image/png"
)

// pageExtensions lists the file extensions recognized as pages when opening
// a directory document.
var pageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Sentinel errors for document opening. A failed open is the one fatal
// condition in the viewer, so these surface directly to the CLI.
var (
	// ErrNotFound is returned when the document path does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrNoPages is returned when the document contains no usable pages.
	ErrNoPages = errors.New("document has no pages")
)

// Page describes one page of the document at its native resolution.
type Page struct {
	// Path is the absolute path of the page image file.
	Path string

	// Width and Height are the native pixel dimensions of the page.
	Width  int
	Height int
}

// Document is an opaque handle to an open score. Immutable after Open.
type Document struct {
	// Path is the document path as given by the user.
	Path string

	// Pages holds the pages in reading order (sorted by file name).
	Pages []Page

	// fingerprint identifies the document content independent of its
	// location on disk.
	fingerprint string
}

// Open opens a document. A document is a directory of page images (png,
// jpg), one file per page, ordered by file name. This is the common format
// for scanned choir scores.
//
// Open fails when the path is missing or contains no pages; per the error
// policy this is the only fatal startup condition.
func Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document must be a directory of page images: %s", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list document pages: %w", err)
	}

	var pagePaths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			pagePaths = append(pagePaths, filepath.Join(path, e.Name()))
		}
	}
	if len(pagePaths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, path)
	}
	slices.Sort(pagePaths)

	doc := &Document{Path: path}
	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init fingerprint hash: %w", err)
	}

	for _, p := range pagePaths {
		page, err := measurePage(p, hash)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
	}
	doc.fingerprint = fmt.Sprintf("%x", hash.Sum(nil))

	return doc, nil
}

// measurePage reads a page's dimensions and feeds its bytes into the
// document fingerprint.
func measurePage(path string, hash io.Writer) (Page, error) {
	f, err := os.Open(path) //nolint:gosec // page path comes from the opened document directory
	if err != nil {
		return Page{}, fmt.Errorf("failed to open page %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	cfg, _, err := image.DecodeConfig(io.TeeReader(f, hash))
	if err != nil {
		return Page{}, fmt.Errorf("failed to decode page %s: %w", path, err)
	}
	// Hash the remainder so the fingerprint covers full page content, not
	// just the header DecodeConfig consumed.
	if _, err := io.Copy(hash, f); err != nil {
		return Page{}, fmt.Errorf("failed to fingerprint page %s: %w", path, err)
	}

	return Page{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}

// BaseName returns the document's base name without extension, used to
// derive per-document file names.
func (d *Document) BaseName() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AnchorFileName returns the deterministic default anchor file name,
// anchors_<documentBaseName>.json.
func (d *Document) AnchorFileName() string {
	return "anchors_" + d.BaseName() + ".json"
}

// AnchorFilePath returns the default anchor file location, next to the
// document itself so the anchors travel with the score.
func (d *Document) AnchorFilePath() string {
	return filepath.Join(filepath.Dir(d.Path), d.AnchorFileName())
}

// Fingerprint returns the BLAKE2b-256 hex digest of the page contents in
// reading order. Two copies of the same score share a fingerprint wherever
// they live on disk.
func (d *Document) Fingerprint() string {
	return d.fingerprint
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// BaseSize returns the stacked dimensions of the document at the given base
// scale: width is the widest page, height the sum of page heights.
func (d *Document) BaseSize(baseScale float64) (width, height float64) {
	for _, p := range d.Pages {
		w := float64(p.Width) * baseScale
		if w > width {
			width = w
		}
		height += float64(p.Height) * baseScale
	}
	return width, height
}
