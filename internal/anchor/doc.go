// Package anchor stores the marked positions of a document.
//
// Anchors are document-space coordinates (see the coords package) kept in
// ascending order with set semantics: two anchors closer together than the
// merge epsilon collapse into one. The store persists as a flat ordered JSON
// array of numbers, so anchor files are trivially inspectable and editable
// by hand.
package anchor
