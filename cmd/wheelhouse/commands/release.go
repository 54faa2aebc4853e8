package commands

import (
	"github.com/spf13/cobra"

	"github.com/rocmforge/wheelhouse/internal/app"
)

func (c *CLI) newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Run pin, dedupe, index and upload as one pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			installDir, _ := cmd.Flags().GetString("install-dir")
			requirements, _ := cmd.Flags().GetString("requirements")
			customDir, _ := cmd.Flags().GetString("custom-dir")
			wheelsDir, _ := cmd.Flags().GetString("wheels-dir")
			indexDir, _ := cmd.Flags().GetString("index-dir")
			label, _ := cmd.Flags().GetString("label")
			projectWheel, _ := cmd.Flags().GetString("project-wheel")
			commit, branch, version, release := scopeOptions(cmd)

			return c.app.Release(cmd.Context(), configPath(cmd), app.ReleaseOptions{
				InstallDir:   installDir,
				Requirements: requirements,
				CustomDir:    customDir,
				WheelsDir:    wheelsDir,
				IndexDir:     indexDir,
				Label:        label,
				ProjectWheel: projectWheel,
				Commit:       commit,
				Branch:       branch,
				Version:      version,
				Release:      release,
			})
		},
	}
	cmd.Flags().StringP("install-dir", "i", "dist", "Directory holding the built package archives")
	cmd.Flags().StringP("requirements", "q", "requirements.txt", "Requirements manifest to rewrite")
	cmd.Flags().String("custom-dir", "custom", "Directory holding the custom-built archives")
	cmd.Flags().StringP("wheels-dir", "w", "wheels", "Directory holding all collected archives")
	cmd.Flags().StringP("index-dir", "x", "index", "Directory the index tree is written to")
	cmd.Flags().StringP("label", "l", "", "Descriptive label rendered in the index pages")
	cmd.Flags().String("project-wheel", "", "Project wheel whose declared pins are validated")
	addScopeFlags(cmd)
	return cmd
}
