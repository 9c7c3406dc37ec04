// Package cmd provides the utility commands of the authorgraph CLI.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo supplies build information.
type VersionInfo interface {
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for authorgraph CLI.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "authorgraph version %s\n", info.Version())
			fmt.Fprintf(w, "commit: %s\n", info.Commit())
			fmt.Fprintf(w, "built: %s\n", info.Date())
			fmt.Fprintf(w, "built by: %s\n", info.BuiltBy())
			fmt.Fprintf(w, "go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
