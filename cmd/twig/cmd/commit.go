package cmd

import (
	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit <message>",
	Short: "Record the staged changes",
	Args: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 0:
			return errNoMessage
		case 1:
			return nil
		default:
			return errOperands
		}
	},
	RunE: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) error {
	return withRepo(func(r *twig.Repository) error {
		_, err := r.Commit(args[0])
		return err
	})
}
