package report

import (
	"io"
	"time"

	"github.com/novotnyt/choir-score-reader/internal/coords"
)

// Setlist is the exportable view of a score's anchors.
type Setlist struct {
	// ScoreName is the document base name.
	ScoreName string `json:"score_name"`

	// ScorePath is the document directory.
	ScorePath string `json:"score_path"`

	// PageCount is the number of pages in the score.
	PageCount int `json:"page_count"`

	// Generated is when the export was produced.
	Generated time.Time `json:"generated"`

	// Anchors are the marked positions in reading order.
	Anchors []coords.Coordinate `json:"anchors"`
}

// Writer defines the interface for setlist output.
// Implementations write the anchor export in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same
// API.
type Writer interface {
	// Write outputs the setlist to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(setlist *Setlist) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the setlist to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(setlist *Setlist) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(setlist)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for setlist writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
