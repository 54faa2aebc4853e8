package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Generate the static package index for a wheel directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wheelsDir, _ := cmd.Flags().GetString("wheels-dir")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			label, _ := cmd.Flags().GetString("label")
			return c.app.Index(configPath(cmd), wheelsDir, outputDir, label)
		},
	}
	cmd.Flags().StringP("wheels-dir", "w", "wheels", "Directory holding the archives to index")
	cmd.Flags().StringP("output-dir", "o", "index", "Directory the index tree is written to")
	cmd.Flags().StringP("label", "l", "", "Descriptive label rendered in the index pages")
	return cmd
}
