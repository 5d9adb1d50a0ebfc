package cmd

import (
	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch <name>",
	Short: "Create a branch at the current head",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.CreateBranch(args[0])
		})
	},
}

var rmBranchCmd = &cobra.Command{
	Use:   "rm-branch <name>",
	Short: "Delete a branch pointer",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.RemoveBranch(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(rmBranchCmd)
}
