/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/ktlint-review/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show ktlint-review version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	info := buildinfo.Collect()

	if jsonOutput {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "ktlint-review %s\n", info.Version)
	if !extended {
		return nil
	}
	if info.ModuleVersion != "" {
		fmt.Fprintf(out, "Module version: %s\n", info.ModuleVersion)
	}
	commit := info.GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if commit == "" {
		commit = "unknown"
	}
	buildDate := info.BuildDate
	if buildDate == "" {
		buildDate = "unknown"
	}
	fmt.Fprintf(out, "Git commit: %s\n", commit)
	fmt.Fprintf(out, "Build date: %s\n", buildDate)
	fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return nil
}
