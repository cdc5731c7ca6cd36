package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/novotnyt/choir-score-reader/internal/document"

	// Register decoders for the page formats the rasterizer accepts.
	_ "image/jpeg"
	_ "image/png"
)

// DefaultDecodeConcurrency bounds how many pages decode at once. Decoding is
// CPU-bound, so more than a few goroutines just thrashes memory on large
// scanned scores.
const DefaultDecodeConcurrency = 4

// interpolatorThreshold is the scaled pixel count above which the rasterizer
// trades quality for speed. CatmullRom on a poster-sized strip takes long
// enough to be felt as a zoom stall.
const interpolatorThreshold = 30_000_000

// ImageDir rasterizes a document whose pages are image files.
type ImageDir struct {
	doc *document.Document

	// concurrency is the page-decode goroutine limit.
	concurrency int
}

// ImageDirOption configures an ImageDir rasterizer.
type ImageDirOption func(*ImageDir)

// WithDecodeConcurrency overrides the page-decode goroutine limit.
// Values below 1 are ignored.
func WithDecodeConcurrency(n int) ImageDirOption {
	return func(r *ImageDir) {
		if n >= 1 {
			r.concurrency = n
		}
	}
}

// NewImageDir creates a rasterizer for the given document.
func NewImageDir(doc *document.Document, opts ...ImageDirOption) *ImageDir {
	r := &ImageDir{
		doc:         doc,
		concurrency: DefaultDecodeConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render decodes and scales every page concurrently, then composites them
// into one vertical strip.
//
// Design decision: pages are decoded with errgroup.SetLimit rather than a
// hand-rolled worker pool. Each page lands in a pre-sized slice slot, so no
// result channel or ordering pass is needed.
func (r *ImageDir) Render(ctx context.Context, scale float64) (*Result, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("render scale must be positive, got %v", scale)
	}

	pages := r.doc.Pages
	scaled := make([]*image.RGBA, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, p := range pages {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			img, err := decodePage(p.Path)
			if err != nil {
				return err
			}
			scaled[i] = scalePage(img, scale)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to rasterize document: %w", err)
	}

	return stackPages(scaled), nil
}

// decodePage loads one page image, applying EXIF orientation for formats
// that carry it. Phone-scanned scores are routinely stored rotated with only
// the orientation tag making them upright.
func decodePage(path string) (image.Image, error) {
	data, err := os.ReadFile(path) //nolint:gosec // page path comes from the opened document
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", path, err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		img = applyOrientation(img, readOrientation(data))
	}
	return img, nil
}

// readOrientation extracts the EXIF orientation value (1-8) from raw image
// bytes. Missing or unparseable EXIF yields 1 (upright); a bad tag must
// never fail a render.
func readOrientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return 1
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 1
	}
	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(entry.Formatted)); err == nil && v >= 1 && v <= 8 {
			return v
		}
	}
	return 1
}

// applyOrientation bakes an EXIF orientation into the pixels. Only the
// rotation cases matter for scanned pages; the mirrored variants (2,4,5,7)
// are produced by no scanner we have seen, and fall back to the nearest
// rotation.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3, 4:
		return rotate180(img)
	case 5, 6:
		return rotate90(img)
	case 7, 8:
		return rotate270(img)
	default:
		return img
	}
}

func rotate90(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.Y-1-y, x-b.Min.X, img.At(x, y))
		}
	}
	return out
}

func rotate180(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.X-1-x, b.Max.Y-1-y, img.At(x, y))
		}
	}
	return out
}

func rotate270(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(y-b.Min.Y, b.Max.X-1-x, img.At(x, y))
		}
	}
	return out
}

// scalePage resamples one page to the render scale. CatmullRom gives the
// quality sheet music needs (thin staff lines survive); above the size
// threshold ApproxBiLinear keeps zoom interactive.
func scalePage(img image.Image, scale float64) *image.RGBA {
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	var interp xdraw.Interpolator = xdraw.CatmullRom
	if w*h > interpolatorThreshold {
		interp = xdraw.ApproxBiLinear
	}
	interp.Scale(out, out.Bounds(), img, b, xdraw.Over, nil)
	return out
}

// stackPages composites scaled pages into one white-backed vertical strip.
func stackPages(pages []*image.RGBA) *Result {
	var width, height int
	heights := make([]float64, len(pages))
	for i, p := range pages {
		if p.Bounds().Dx() > width {
			width = p.Bounds().Dx()
		}
		heights[i] = float64(p.Bounds().Dy())
		height += p.Bounds().Dy()
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	strip := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(strip, strip.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := 0
	for _, p := range pages {
		r := image.Rect(0, y, p.Bounds().Dx(), y+p.Bounds().Dy())
		draw.Draw(strip, r, p, p.Bounds().Min, draw.Src)
		y += p.Bounds().Dy()
	}

	return &Result{Bitmap: strip, PageHeights: heights}
}
