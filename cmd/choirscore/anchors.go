package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/novotnyt/choir-score-reader/internal/anchor"
	"github.com/novotnyt/choir-score-reader/internal/config"
	"github.com/novotnyt/choir-score-reader/internal/document"
	"github.com/novotnyt/choir-score-reader/internal/report"
)

// NewAnchorsCmd creates the anchors command.
func NewAnchorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchors <score-directory>",
		Short: "List or export a score's anchors",
		Long: `Anchors reads a score's anchor file and prints the marked positions in
reading order. With --markdown it produces a setlist document that can be
shared with the choir; with --json it produces machine-readable output.

Examples:
  # List anchors on the terminal
  choirscore anchors ~/scores/magnificat

  # Export a Markdown setlist
  choirscore anchors --markdown -o setlist.md ~/scores/magnificat

  # JSON for tooling
  choirscore anchors --json ~/scores/magnificat`,
		Args: cobra.ExactArgs(1),
		RunE: runAnchorsCmd,
	}

	cmd.Flags().StringP("anchors", "a", "",
		"Anchor file path (default: anchors_<score>.json next to the score)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown setlist (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the export to the specified file path (creates directories if needed)")

	return cmd
}

// runAnchorsCmd executes the anchors command.
func runAnchorsCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.DocumentPath = args[0]

	var err error
	cfg.AnchorPath, err = cmd.Flags().GetString("anchors")
	if err != nil {
		return err
	}
	cfg.JSONExport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownExport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	return runAnchors(cmd.OutOrStdout(), cfg)
}

// runAnchors loads the score and its anchors and writes the export.
func runAnchors(stdout io.Writer, cfg *config.Config) error {
	doc, err := document.Open(cfg.DocumentPath)
	if err != nil {
		return fmt.Errorf("failed to open score: %w", err)
	}

	anchorPath := cfg.AnchorPath
	if anchorPath == "" {
		anchorPath = doc.AnchorFilePath()
	}

	_, nativeH := doc.BaseSize(1.0)
	store := anchor.NewStore(nativeH)
	if err := store.Load(anchorPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load anchors from %s: %w", anchorPath, err)
		}
		// A score without an anchor file has an empty setlist.
	}

	setlist := &report.Setlist{
		ScoreName: doc.BaseName(),
		ScorePath: doc.Path,
		PageCount: doc.PageCount(),
		Generated: time.Now(),
		Anchors:   store.All(),
	}

	out := stdout
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(cfg.OutputFile) //nolint:gosec // user-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer
	switch {
	case cfg.MarkdownExport:
		w = report.NewMarkdownWriter(out)
	case cfg.JSONExport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	default:
		w = report.NewMarkdownWriter(out)
	}

	if _, err := w.Write(setlist); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
