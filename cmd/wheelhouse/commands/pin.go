package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Pin requirements to the versions built into the install directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			installDir, _ := cmd.Flags().GetString("install-dir")
			requirements, _ := cmd.Flags().GetString("requirements")

			report, err := c.app.Pin(installDir, requirements)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, change := range report.Pinned {
				if change.Replaced {
					_, _ = fmt.Fprintf(out, "pinned %s==%s (replaced existing constraint)\n", change.Name, change.Version)
					continue
				}
				_, _ = fmt.Fprintf(out, "pinned %s==%s\n", change.Name, change.Version)
			}
			for _, skipped := range report.Skipped {
				_, _ = fmt.Fprintf(out, "skipped %s\n", skipped)
			}
			return nil
		},
	}
	cmd.Flags().StringP("install-dir", "i", "dist", "Directory holding the built package archives")
	cmd.Flags().StringP("requirements", "q", "requirements.txt", "Requirements manifest to rewrite")
	return cmd
}
