package cmd

import (
	"chatledger/internal/version"

	"github.com/spf13/cobra"
)

// Version information variables that may be set via ldflags on the cmd package.
// Non-empty values take precedence over the variables of the version package.
//
//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	// Version is the application version (e.g., v1.0.0).
	Version string
	// Commit is the git commit hash (e.g., abc123def456).
	Commit string
	// BuildTime is the build timestamp (e.g., 2025-01-01T12:00:00Z).
	BuildTime string
)

// newVersionCmd creates and returns the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show version information for the chatledger application.

This command displays the version number, commit and build time of the
chatledger CLI tool.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}

// runVersion writes the version information to the command output.
func runVersion(cmd *cobra.Command, short bool) error {
	syncLegacyVersionVars()
	return version.NewVersionInfo().Write(cmd.OutOrStdout(), short)
}

// syncLegacyVersionVars copies the cmd build variables into the version package.
func syncLegacyVersionVars() {
	if Version != "" || Commit != "" || BuildTime != "" {
		version.SetBuildVars(Version, Commit, BuildTime)
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newVersionCmd())
}
