// Package log provides logging for the viewer, built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Throttling of high-frequency repeated records (animation ticks,
//     resize storms)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Throttling
//
// An interactive viewer emits the same log record many times per second
// while an animation runs or a window resize is in progress. The
// ThrottleHandler collapses bursts of identical messages into one record
// per throttle window, annotated with a repeat count, so verbose logs
// stay readable without losing the signal that the event kept firing.
//
// # Usage
//
//	// Create a throttled logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("animation tick",
//	    "offset", 412.5,
//	    "target", 800.0,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
