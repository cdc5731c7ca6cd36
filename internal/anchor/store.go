package anchor

import (
	"errors"
	"math"
	"slices"

	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// DefaultMergeEpsilon is the distance in document units under which two
// anchors are considered the same position.
//
// Design decision: the original behavior deduplicated anchors by exact
// floating-point equality, which silently fails the moment a coordinate
// passes through a scale conversion. Half a document unit is far below
// anything a user could distinguish on screen, so merging at that distance
// loses nothing and makes deduplication robust.
const DefaultMergeEpsilon = 0.5

// clampMargin keeps anchors strictly inside the document: an anchor exactly
// at documentHeight would scroll past the last page.
const clampMargin = 1.0

// ErrEmpty is returned by operations that need at least one anchor.
var ErrEmpty = errors.New("anchor store is empty")

// Store is an ordered set of document-space anchor positions.
// It is not safe for concurrent use; the viewer mutates it only from its
// single event loop.
type Store struct {
	// anchors is kept sorted ascending at all times.
	anchors []coords.Coordinate

	// documentHeight bounds Add clamping, in document units.
	documentHeight float64

	// mergeEpsilon is the set-membership distance.
	mergeEpsilon float64
}

// NewStore creates an empty store for a document of the given height in
// document units. A non-positive height disables clamping against the
// bottom edge (anchors still clamp at zero).
func NewStore(documentHeight float64) *Store {
	return &Store{
		documentHeight: documentHeight,
		mergeEpsilon:   DefaultMergeEpsilon,
	}
}

// SetMergeEpsilon overrides the merge distance. Negative values are ignored.
func (s *Store) SetMergeEpsilon(eps float64) {
	if eps >= 0 {
		s.mergeEpsilon = eps
	}
}

// SetDocumentHeight updates the clamping bound, for hosts that learn the
// document height after the store is created.
func (s *Store) SetDocumentHeight(h float64) {
	s.documentHeight = h
}

// Add inserts an anchor at the given document coordinate, clamped into the
// document. It reports whether a new anchor was created; false means the
// position merged into an existing anchor within the epsilon.
func (s *Store) Add(c coords.Coordinate) bool {
	c = s.clamp(c)
	for _, a := range s.anchors {
		if math.Abs(float64(a-c)) <= s.mergeEpsilon {
			return false
		}
	}
	i, _ := slices.BinarySearch(s.anchors, c)
	s.anchors = slices.Insert(s.anchors, i, c)
	return true
}

// RemoveNearest removes the anchor closest to the given coordinate and
// returns it. With equidistant candidates the lower coordinate is removed,
// keeping removal deterministic. Returns ErrEmpty if the store has no
// anchors; callers treat that as a reportable no-op.
func (s *Store) RemoveNearest(c coords.Coordinate) (coords.Coordinate, error) {
	if len(s.anchors) == 0 {
		return 0, ErrEmpty
	}

	best := 0
	bestDist := math.Abs(float64(s.anchors[0] - c))
	for i, a := range s.anchors[1:] {
		// Strict less-than keeps the first (lowest) of equidistant
		// candidates, since anchors are sorted ascending.
		if d := math.Abs(float64(a - c)); d < bestDist {
			best, bestDist = i+1, d
		}
	}

	removed := s.anchors[best]
	s.anchors = slices.Delete(s.anchors, best, best+1)
	return removed, nil
}

// All returns the anchors in ascending order. The slice is a copy; mutating
// it does not affect the store.
func (s *Store) All() []coords.Coordinate {
	return slices.Clone(s.anchors)
}

// Len returns the number of anchors.
func (s *Store) Len() int {
	return len(s.anchors)
}

// At returns the anchor at the given index in ascending order.
func (s *Store) At(i int) coords.Coordinate {
	return s.anchors[i]
}

// Replace swaps the entire anchor set, clamping, merging, and sorting the
// input. Used by Load; any navigation cursor over the old set must be reset
// by the caller.
func (s *Store) Replace(anchors []coords.Coordinate) {
	s.anchors = s.anchors[:0]
	for _, c := range anchors {
		s.Add(c)
	}
}

// clamp forces c into [0, documentHeight - clampMargin].
func (s *Store) clamp(c coords.Coordinate) coords.Coordinate {
	if c < 0 {
		return 0
	}
	if s.documentHeight > clampMargin && float64(c) > s.documentHeight-clampMargin {
		return coords.Coordinate(s.documentHeight - clampMargin)
	}
	return c
}
