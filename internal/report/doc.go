// Package report generates anchor exports for a score.
//
// The anchors command uses this package to turn a score's anchor set into
// a shareable document: a Markdown setlist that can be handed to a choir,
// or JSON for tool integration. Writers share a common interface so the
// command can pick the format from a flag and write to stdout or a file
// with the same code path.
package report
