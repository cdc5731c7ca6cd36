// Package render produces the continuous bitmap strip the viewer displays.
//
// The Rasterizer interface is the engine's rendering boundary: given a
// render scale it returns one bitmap for the whole document, pages stacked
// vertically, plus the rendered height of each page. ImageDir is the
// built-in backend for documents that are directories of page images. Cache
// wraps any Rasterizer with a small scale-keyed cache so toggling between a
// handful of zoom levels does not re-rasterize every time.
package render
