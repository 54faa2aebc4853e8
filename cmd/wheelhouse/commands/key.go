package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the cache key for the build recipe and configured arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipe, _ := cmd.Flags().GetString("recipe")
			key, err := c.app.CacheKey(configPath(cmd), recipe)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().StringP("recipe", "r", "Dockerfile", "Path to the build recipe file")
	return cmd
}
