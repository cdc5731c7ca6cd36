package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs setlists in Markdown format.
// This format is designed for sharing with a choir or pasting into
// rehearsal notes.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the setlist in Markdown format.
func (w *MarkdownWriter) Write(setlist *Setlist) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, setlist)
	w.writeAnchors(md, setlist)

	return len(md.String()), md.Build()
}

// writeHeader writes the setlist header with score information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, setlist *Setlist) {
	md.H1("Setlist: " + setlist.ScoreName)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Score", "`" + setlist.ScorePath + "`"},
			{"Pages", strconv.Itoa(setlist.PageCount)},
			{"Anchors", strconv.Itoa(len(setlist.Anchors))},
			{"Generated", setlist.Generated.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

// writeAnchors writes the anchor table in reading order.
func (w *MarkdownWriter) writeAnchors(md *markdown.Markdown, setlist *Setlist) {
	md.H2("Anchors")
	md.PlainText("")

	if len(setlist.Anchors) == 0 {
		md.PlainText("No anchors marked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(setlist.Anchors))
	for i, a := range setlist.Anchors {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.1f", float64(a)),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Position"},
		Rows:   rows,
	})
	md.PlainText("")
}
