package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocmforge/wheelhouse/internal/app"
)

func (c *CLI) newDedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove externally sourced copies of custom-built packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			customDir, _ := cmd.Flags().GetString("custom-dir")
			allDir, _ := cmd.Flags().GetString("wheels-dir")
			packages, _ := cmd.Flags().GetStringSlice("packages")
			projectWheel, _ := cmd.Flags().GetString("project-wheel")

			report, err := c.app.Dedupe(configPath(cmd), app.DedupeOptions{
				CustomDir:    customDir,
				AllDir:       allDir,
				Packages:     packages,
				ProjectWheel: projectWheel,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, deleted := range report.Deleted {
				_, _ = fmt.Fprintf(out, "deleted %s\n", deleted)
			}
			for name, kept := range report.Kept {
				_, _ = fmt.Fprintf(out, "kept %s (%s)\n", name, kept)
			}
			for _, m := range report.Mismatches {
				_, _ = fmt.Fprintf(out, "pin mismatch for %s: declared %s, retained %s\n", m.Name, m.Declared, m.Retained)
			}
			return nil
		},
	}
	cmd.Flags().String("custom-dir", "custom", "Directory holding the custom-built archives")
	cmd.Flags().StringP("wheels-dir", "w", "wheels", "Directory holding all collected archives, filtered in place")
	cmd.Flags().StringSlice("packages", nil, "Packages to filter (defaults to the configured allow-list)")
	cmd.Flags().String("project-wheel", "", "Project wheel whose declared pins are validated against retained archives")
	return cmd
}
