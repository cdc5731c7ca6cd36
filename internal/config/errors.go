package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
//
// Design decision: package-level sentinel errors rather than fresh error
// instances in Validate, so callers can branch with errors.Is while the
// messages stay human-readable. None of these carry dynamic values, so
// plain errors.New suffices.
var (
	// ErrNoDocument is returned when no document path was given.
	ErrNoDocument = errors.New("no document specified: provide a score path")

	// ErrInvalidBaseScale is returned when the base render scale is not
	// positive. A zero base scale would zero out every coordinate
	// conversion.
	ErrInvalidBaseScale = errors.New("invalid base scale: must be positive")

	// ErrInvalidZoomStep is returned when the zoom step is not greater
	// than 1. A step of 1 makes zoom a no-op; below 1 it inverts.
	ErrInvalidZoomStep = errors.New("invalid zoom step: must be greater than 1")

	// ErrInvalidMergeEpsilon is returned when the anchor merge distance
	// is negative. Use 0 for exact-match merging.
	ErrInvalidMergeEpsilon = errors.New("invalid merge epsilon: must be non-negative")

	// ErrInvalidScrollDuration is returned when the animation duration
	// is not positive.
	ErrInvalidScrollDuration = errors.New("invalid scroll duration: must be positive")

	// ErrInvalidScrollFrames is returned when the animation frame count
	// is below 1.
	ErrInvalidScrollFrames = errors.New("invalid scroll frames: must be at least 1")

	// ErrInvalidMarkerThickness is returned when the marker line height
	// is below 1 pixel.
	ErrInvalidMarkerThickness = errors.New("invalid marker thickness: must be at least 1 pixel")

	// ErrInvalidCacheScales is returned when the render cache capacity
	// is below 1.
	ErrInvalidCacheScales = errors.New("invalid cache scales: must be at least 1")

	// ErrInvalidDecodeConcurrency is returned when the decode limit is
	// below 1.
	ErrInvalidDecodeConcurrency = errors.New("invalid decode concurrency: must be at least 1")

	// ErrConflictingExportFormats is returned when both --markdown and
	// --json are requested. Only one export format can be used at a
	// time.
	ErrConflictingExportFormats = errors.New("conflicting export formats: --json and --markdown cannot be used together")
)
