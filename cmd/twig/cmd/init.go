package cmd

import (
	"github.com/aweris/twig"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a repository in the working directory",
	Args:  exactArgs(0),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger, closer := newLogger()
	defer closer.Close()

	repo, err := twig.Init(workDir(), repoOptions(logger)...)
	if err != nil {
		return err
	}
	return repo.Close()
}
