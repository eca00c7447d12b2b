// Package commands contains the ifcpeek subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display ifcpeek version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "ifcpeek v%s\n", version)
			_, _ = fmt.Fprintln(out, "Interactive IFC model query shell")
			if commit != "" && commit != "unknown" {
				_, _ = fmt.Fprintf(out, "commit: %s\n", commit)
			}
			if date != "" && date != "unknown" {
				_, _ = fmt.Fprintf(out, "built:  %s\n", date)
			}
		},
	}
}
