// Package coords owns the mapping between document space and screen space.
//
// Document space is the vertical pixel space of the document at its native
// page resolution. It is resolution independent in the
// sense that it never changes when the user zooms: every zoom operation is a
// pure change of the user scale, and positions stored in document space are
// re-projected through the current scale instead of being re-measured from
// pixels. Anchors are always stored in document space, which is what keeps
// them from drifting relative to the content across repeated rescales.
//
// The Space type is the single source of truth for the current scale. All
// other packages convert through it rather than carrying their own copy of
// the zoom factor.
package coords
