package cmd

import (
	"fmt"
	"io"

	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  exactArgs(1),
	RunE:  runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	return withRepo(func(r *twig.Repository) error {
		res, err := r.Merge(args[0])
		if err != nil {
			return err
		}
		printMerge(cmd.OutOrStdout(), res)
		return nil
	})
}

func printMerge(w io.Writer, res *twig.MergeResult) {
	switch {
	case res.FastForward:
		fmt.Fprintln(w, "Current branch fast-forwarded.")
	case res.ConflictNotice:
		fmt.Fprintln(w, "Encountered a merge conflict.")
	}
}
