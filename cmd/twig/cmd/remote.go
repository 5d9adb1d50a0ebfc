package cmd

import (
	"context"

	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var addRemoteCmd = &cobra.Command{
	Use:   "add-remote <name> <location>",
	Short: "Register a remote repository",
	Long: `Register a remote repository. The location is the storage directory
of another repository (for example ../other/.twig) or oci:<path> for a bare
repository kept as an OCI image layout.`,
	Args: exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.AddRemote(args[0], args[1])
		})
	},
}

var rmRemoteCmd = &cobra.Command{
	Use:   "rm-remote <name>",
	Short: "Forget a remote",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.RemoveRemote(args[0])
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <remote> <branch>",
	Short: "Copy a remote branch into <remote>/<branch>",
	Args:  exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.Fetch(context.Background(), args[0], args[1])
		})
	},
}

var pushCmd = &cobra.Command{
	Use:   "push <remote> <branch>",
	Short: "Send the current head to a remote branch",
	Args:  exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.Push(context.Background(), args[0], args[1])
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull <remote> <branch>",
	Short: "Fetch a remote branch and merge it",
	Args:  exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			res, err := r.Pull(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			printMerge(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(addRemoteCmd)
	rootCmd.AddCommand(rmRemoteCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
}
