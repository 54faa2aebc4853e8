package commands

import (
	"github.com/spf13/cobra"

	"github.com/rocmforge/wheelhouse/internal/app"
)

func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("commit", "", "Commit SHA scoping this upload (required)")
	cmd.Flags().String("branch", "", "Branch name; main additionally publishes to the nightly prefix")
	cmd.Flags().String("release-version", "", "Release version; publishes to a version prefix when --release is set")
	cmd.Flags().Bool("release", false, "Mark this build as a release")
	_ = cmd.MarkFlagRequired("commit")
}

func scopeOptions(cmd *cobra.Command) (commit, branch, version string, release bool) {
	commit, _ = cmd.Flags().GetString("commit")
	branch, _ = cmd.Flags().GetString("branch")
	version, _ = cmd.Flags().GetString("release-version")
	release, _ = cmd.Flags().GetBool("release")
	return commit, branch, version, release
}

func (c *CLI) newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Publish wheels and index to the object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wheelsDir, _ := cmd.Flags().GetString("wheels-dir")
			indexDir, _ := cmd.Flags().GetString("index-dir")
			commit, branch, version, release := scopeOptions(cmd)

			return c.app.Upload(cmd.Context(), configPath(cmd), app.UploadOptions{
				WheelsDir: wheelsDir,
				IndexDir:  indexDir,
				Commit:    commit,
				Branch:    branch,
				Version:   version,
				Release:   release,
			})
		},
	}
	cmd.Flags().StringP("wheels-dir", "w", "wheels", "Directory holding the archives to publish")
	cmd.Flags().StringP("index-dir", "x", "index", "Directory holding the generated index tree")
	addScopeFlags(cmd)
	return cmd
}
