package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion returns version string.
// Priority: ldflags > debug.ReadBuildInfo > "(devel)"
func getVersion() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if buildInfo.Main.Version != "" {
			return buildInfo.Main.Version
		}
	}
	return "(devel)"
}

// getCommit returns commit hash.
// Priority: ldflags > debug.ReadBuildInfo > "unknown"
func getCommit() string {
	if commit != "" {
		return commit
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.revision" {
				if len(setting.Value) > 7 {
					return setting.Value[:7]
				}
				return setting.Value
			}
		}
	}
	return "unknown"
}

// getDate returns build date.
// Priority: ldflags > debug.ReadBuildInfo > "unknown"
func getDate() string {
	if date != "" {
		return date
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "vcs.time" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Version prints the choirscore release, commit hash, and build date.

Include this output when reporting a problem: anchor files and the score
library are shared between choir members, so knowing which build wrote
them matters. With --short only the bare version is printed, for use in
scripts and setlist footers.`,
		RunE: runVersionCmd,
	}
	cmd.Flags().BoolP("short", "s", false, "Print only the version number")
	return cmd
}

// runVersionCmd executes the version command.
func runVersionCmd(cmd *cobra.Command, _ []string) error {
	short, err := cmd.Flags().GetBool("short")
	if err != nil {
		return err
	}
	if short {
		fmt.Fprintln(cmd.OutOrStdout(), getVersion())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "choirscore version %s\n", getVersion())
	fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", getCommit())
	fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", getDate())
	return nil
}
