// Package document models an open score: the ordered pages of the source
// material and the identity facts derived from it (base name, content
// fingerprint, anchor file name).
//
// The document itself is treated as immutable once opened. Rasterization is
// someone else's job (see the render package); this package only knows what
// the pages are, not what they look like.
package document
