package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocmforge/wheelhouse/internal/organize"
)

func (c *CLI) newOrganizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Partition built wheels by size for page and release hosting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			artifactsDir, _ := cmd.Flags().GetString("artifacts-dir")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			sizeLimit, _ := cmd.Flags().GetInt64("size-limit")

			report, err := c.app.Organize(artifactsDir, outputDir, sizeLimit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "organized %d wheels: %d large (%d bytes), %d small (%d bytes)\n",
				len(report.Large)+len(report.Small),
				len(report.Large), report.LargeBytes,
				len(report.Small), report.SmallBytes)
			return nil
		},
	}
	cmd.Flags().StringP("artifacts-dir", "a", "artifacts", "Directory tree holding the downloaded build artifacts")
	cmd.Flags().StringP("output-dir", "o", "pypi-repo", "Directory the partitioned wheel sets are written to")
	cmd.Flags().Int64("size-limit", organize.DefaultSizeLimit, "Size in bytes above which a wheel goes to the large set")
	return cmd
}
