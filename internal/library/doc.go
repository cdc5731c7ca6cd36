// Package library provides SQLite-based storage for the score library.
//
// The library remembers every score the viewer has opened, keyed by a
// content fingerprint so a score keeps its history when its directory
// moves. Per score it stores the last opened time, the last reading
// position, and named anchor snapshots (a rehearsal can keep a "concert"
// anchor set separate from a "sectional" one).
//
// Storage lives in a single database file under the XDG data directory by
// default. The view command records sessions automatically; the anchors
// command reads snapshots back out.
package library
