package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// ForceRebuildEnv forces cache checks to report a miss when set truthy.
// CI sets it to rebuild without invalidating anything.
const ForceRebuildEnv = "WHEELHOUSE_FORCE_REBUILD"

func forceRebuildDefault() bool {
	v, err := strconv.ParseBool(os.Getenv(ForceRebuildEnv))
	return err == nil && v
}

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Query and transfer cached build outputs",
	}
	cmd.PersistentFlags().StringP("recipe", "r", "Dockerfile", "Path to the build recipe file")
	cmd.AddCommand(c.newCacheCheckCmd())
	cmd.AddCommand(c.newCachePullCmd())
	cmd.AddCommand(c.newCachePushCmd())
	return cmd
}

func (c *CLI) newCacheCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether a cached build exists for the recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipe, _ := cmd.Flags().GetString("recipe")
			force, _ := cmd.Flags().GetBool("force")
			key, hit, err := c.app.CacheCheck(cmd.Context(), configPath(cmd), recipe, force)
			if err != nil {
				return err
			}
			status := "miss"
			if hit {
				status = "hit"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", status, key)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", forceRebuildDefault(), "Report a miss regardless of cache state")
	return cmd
}

func (c *CLI) newCachePullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the cached build for the recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipe, _ := cmd.Flags().GetString("recipe")
			dest, _ := cmd.Flags().GetString("dest")
			key, err := c.app.CachePull(cmd.Context(), configPath(cmd), recipe, dest)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pulled %s into %s\n", key, dest)
			return nil
		},
	}
	cmd.Flags().StringP("dest", "d", ".", "Directory to download the cached build into")
	return cmd
}

func (c *CLI) newCachePushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload a build directory as the cached result for the recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipe, _ := cmd.Flags().GetString("recipe")
			src, _ := cmd.Flags().GetString("src")
			key, err := c.app.CachePush(cmd.Context(), configPath(cmd), recipe, src)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pushed %s from %s\n", key, src)
			return nil
		},
	}
	cmd.Flags().StringP("src", "s", ".", "Directory holding the build outputs to cache")
	return cmd
}
