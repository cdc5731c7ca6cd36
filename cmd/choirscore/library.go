package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novotnyt/choir-score-reader/internal/anchor"
	"github.com/novotnyt/choir-score-reader/internal/config"
	"github.com/novotnyt/choir-score-reader/internal/document"
	"github.com/novotnyt/choir-score-reader/internal/library"
)

// defaultRecentLimit bounds the recent listing to roughly one rehearsal
// season of scores.
const defaultRecentLimit = 10

// NewLibraryCmd creates the library command and its subcommands.
func NewLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and manage the score library",
		Long: `Library manages the per-user score database that viewing sessions write
to: which scores were opened, where reading stopped, and labeled snapshots
of each score's anchor set.

Snapshots let a choir keep one anchor layout per occasion (sectional,
full rehearsal, concert) and switch between them without re-marking the
score.

Examples:
  # What was rehearsed lately
  choirscore library recent

  # Keep the current markings under a label
  choirscore library snapshot ~/scores/magnificat concert

  # See what is stored for a score
  choirscore library snapshots ~/scores/magnificat

  # Bring a snapshot back into the anchor file
  choirscore library restore ~/scores/magnificat concert`,
	}

	cmd.PersistentFlags().String("library-dir", "",
		"Score library location (default: XDG data directory)")

	cmd.AddCommand(newLibraryRecentCmd())
	cmd.AddCommand(newLibrarySnapshotCmd())
	cmd.AddCommand(newLibrarySnapshotsCmd())
	cmd.AddCommand(newLibraryRestoreCmd())
	cmd.AddCommand(newLibraryDeleteCmd())

	return cmd
}

func newLibraryRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened scores, newest first",
		Args:  cobra.NoArgs,
		RunE:  runLibraryRecentCmd,
	}
	cmd.Flags().IntP("limit", "n", defaultRecentLimit, "Maximum number of scores to list")
	return cmd
}

func newLibrarySnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <score-directory> <label>",
		Short: "Store the score's current anchors under a label",
		Long: `Snapshot copies the score's anchor file into the library under the given
label. Saving under an existing label replaces that snapshot. The anchor
file itself is not modified.`,
		Args: cobra.ExactArgs(2),
		RunE: runLibrarySnapshotCmd,
	}
	cmd.Flags().StringP("anchors", "a", "",
		"Anchor file path (default: anchors_<score>.json next to the score)")
	return cmd
}

func newLibrarySnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots <score-directory>",
		Short: "List the anchor snapshots stored for a score",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibrarySnapshotsCmd,
	}
}

func newLibraryRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <score-directory> <label>",
		Short: "Write a stored snapshot back into the score's anchor file",
		Args:  cobra.ExactArgs(2),
		RunE:  runLibraryRestoreCmd,
	}
	cmd.Flags().StringP("anchors", "a", "",
		"Anchor file path (default: anchors_<score>.json next to the score)")
	return cmd
}

func newLibraryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <score-directory> <label>",
		Short: "Remove a stored anchor snapshot",
		Args:  cobra.ExactArgs(2),
		RunE:  runLibraryDeleteCmd,
	}
}

// openLibraryFromFlags opens the library named by --library-dir, falling
// back to the XDG data directory.
func openLibraryFromFlags(cmd *cobra.Command) (*library.Library, error) {
	dir, err := cmd.Flags().GetString("library-dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}
	lib, err := library.Open(dir, library.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open score library: %w", err)
	}
	return lib, nil
}

// anchorPathFromFlags resolves the anchor file for a score, honoring the
// --anchors override.
func anchorPathFromFlags(cmd *cobra.Command, doc *document.Document) (string, error) {
	path, err := cmd.Flags().GetString("anchors")
	if err != nil {
		return "", err
	}
	if path == "" {
		path = doc.AnchorFilePath()
	}
	return path, nil
}

// runLibraryRecentCmd executes the library recent command.
func runLibraryRecentCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	lib, err := openLibraryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	scores, err := lib.RecentScores(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores in the library yet.")
		return nil
	}
	for _, s := range scores {
		fmt.Fprintf(out, "%s  %s  (%d pages, last opened %s, position %.0f)\n",
			s.BaseName, s.Path, s.PageCount,
			s.LastOpened.Format("2006-01-02 15:04"), float64(s.LastPosition))
	}
	return nil
}

// runLibrarySnapshotCmd executes the library snapshot command.
func runLibrarySnapshotCmd(cmd *cobra.Command, args []string) error {
	doc, err := document.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open score: %w", err)
	}
	label := args[1]

	anchorPath, err := anchorPathFromFlags(cmd, doc)
	if err != nil {
		return err
	}

	_, nativeH := doc.BaseSize(1.0)
	store := anchor.NewStore(nativeH)
	if err := store.Load(anchorPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load anchors from %s: %w", anchorPath, err)
		}
		// An unmarked score snapshots as an empty set; restoring it later
		// clears the anchor file on purpose.
	}

	lib, err := openLibraryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	ctx := cmd.Context()
	// Make sure the score has a record to hang the snapshot on, so
	// snapshotting works even for scores never opened with view.
	if err := lib.RecordSession(ctx, &library.Score{
		Fingerprint: doc.Fingerprint(),
		Path:        doc.Path,
		BaseName:    doc.BaseName(),
		PageCount:   doc.PageCount(),
	}); err != nil {
		return err
	}
	if err := lib.SnapshotAnchors(ctx, doc.Fingerprint(), label, store.All()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d anchors for %s under %q\n",
		store.Len(), doc.BaseName(), label)
	return nil
}

// runLibrarySnapshotsCmd executes the library snapshots command.
func runLibrarySnapshotsCmd(cmd *cobra.Command, args []string) error {
	doc, err := document.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open score: %w", err)
	}

	lib, err := openLibraryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	sets, err := lib.ListAnchorSets(cmd.Context(), doc.Fingerprint())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sets) == 0 {
		fmt.Fprintf(out, "No snapshots stored for %s.\n", doc.BaseName())
		return nil
	}
	for _, set := range sets {
		fmt.Fprintf(out, "%s  %d anchors  (created %s)\n",
			set.Label, len(set.Anchors), set.Created.Format("2006-01-02 15:04"))
	}
	return nil
}

// runLibraryRestoreCmd executes the library restore command.
func runLibraryRestoreCmd(cmd *cobra.Command, args []string) error {
	doc, err := document.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open score: %w", err)
	}
	label := args[1]

	lib, err := openLibraryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	set, err := lib.GetAnchorSet(cmd.Context(), doc.Fingerprint(), label)
	if err != nil {
		return err
	}
	if set == nil {
		return fmt.Errorf("no snapshot %q stored for %s", label, doc.BaseName())
	}

	anchorPath, err := anchorPathFromFlags(cmd, doc)
	if err != nil {
		return err
	}

	_, nativeH := doc.BaseSize(1.0)
	store := anchor.NewStore(nativeH)
	store.Replace(set.Anchors)
	if err := store.Save(anchorPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d anchors from %q to %s\n",
		store.Len(), label, anchorPath)
	return nil
}

// runLibraryDeleteCmd executes the library delete command.
func runLibraryDeleteCmd(cmd *cobra.Command, args []string) error {
	doc, err := document.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open score: %w", err)
	}
	label := args[1]

	lib, err := openLibraryFromFlags(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.DeleteAnchorSet(cmd.Context(), doc.Fingerprint(), label); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %q for %s\n", label, doc.BaseName())
	return nil
}
