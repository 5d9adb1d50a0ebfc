package cmd

import (
	"fmt"

	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the history of the current branch",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.WriteLog(cmd.OutOrStdout())
		})
	},
}

var globalLogCmd = &cobra.Command{
	Use:   "global-log",
	Short: "Show every commit ever made",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.WriteGlobalLog(cmd.OutOrStdout())
		})
	},
}

var findCmd = &cobra.Command{
	Use:   "find <message>",
	Short: "Print the ids of commits with the given message",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			commits, err := r.FindByMessage(args[0])
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Fprintln(cmd.OutOrStdout(), c.Hash)
			}
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show branches, staged files and working tree changes",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *twig.Repository) error {
			return r.WriteStatus(cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(globalLogCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(statusCmd)
}
