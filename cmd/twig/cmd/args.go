package cmd

import "github.com/spf13/cobra"

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errOperands
		}
		return nil
	}
}
