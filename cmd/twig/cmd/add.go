package cmd

import (
	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Stage a file",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.Add(args[0])
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Unstage a file or stage its removal",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.Remove(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(rmCmd)
}
