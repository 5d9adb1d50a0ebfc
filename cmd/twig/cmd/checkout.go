package cmd

import (
	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch> | checkout -- <file> | checkout <commit> -- <file>",
	Short: "Switch branches or restore a file",
	RunE:  runCheckout,
}

var resetCmd = &cobra.Command{
	Use:   "reset <commit>",
	Short: "Check out a commit and move the current branch to it",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.Reset(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(resetCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
	dash := cmd.ArgsLenAtDash()
	switch {
	case dash == -1 && len(args) == 1:
		return withRepo(func(r *twig.Repository) error {
			err := r.CheckoutBranch(args[0])
			return withMessage(err, twig.ErrNoSuchBranch, "No such branch exists.")
		})
	case dash == 0 && len(args) == 1:
		return withRepo(func(r *twig.Repository) error {
			return r.CheckoutHeadFile(args[0])
		})
	case dash == 1 && len(args) == 2:
		return withRepo(func(r *twig.Repository) error {
			return r.CheckoutFile(args[0], args[1])
		})
	default:
		return errOperands
	}
}
