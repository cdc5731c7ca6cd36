// Package main provides the entry point for the choirscore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for choirscore.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "choirscore",
		Short: "Sheet-music viewer with anchor navigation for choir rehearsals",
		Long: `choirscore displays a score (a directory of page images) as one continuous
vertical strip. Singers mark anchor positions (verse starts, repeats, codas)
and jump between them with a single key, so navigation never interrupts the
music.

Anchors live in a JSON file next to the score, so a score directory shared
with the choir carries its markings with it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewViewCmd())
	cmd.AddCommand(NewAnchorsCmd())
	cmd.AddCommand(NewLibraryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
