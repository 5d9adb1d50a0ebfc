package cmd

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aweris/twig"
	"github.com/aweris/twig/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "twig",
	Short: "A tiny version-control system",
	Long:  "twig tracks the files of one flat directory: commits, branches, merges and remotes.",

	SilenceErrors: true,
	SilenceUsage:  true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return errNoCommand
	},
}

// Execute runs the command line and exits. User-facing failures print one
// line and still exit 0.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	// pflag keeps the "--" position from a previous parse
	checkoutCmd.ResetFlags()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return report(out, rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/twig/config.yaml)")
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "working directory")
	rootCmd.PersistentFlags().String("split-strategy", "", "merge base algorithm: lca or lockstep")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "write debug log to stderr")

	viper.BindPFlag("merge.split_strategy", rootCmd.PersistentFlags().Lookup("split-strategy"))
	viper.BindPFlag("log.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TWIG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("compression.enabled", true)
	viper.SetDefault("compression.level", 2)
	viper.SetDefault("cache.size", 256)
	viper.SetDefault("merge.split_strategy", string(twig.SplitLCA))
	viper.SetDefault("transfer.concurrency", 1)
	viper.SetDefault("log.file", "")
	viper.SetDefault("log.verbose", false)

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "twig")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "twig")
	}
	return ".twig"
}

func workDir() string {
	return rootCmd.PersistentFlags().Lookup("dir").Value.String()
}

func newLogger() (*log.Logger, io.Closer) {
	return logging.New(logging.Options{
		File:    viper.GetString("log.file"),
		Verbose: viper.GetBool("log.verbose"),
	})
}

func repoOptions(logger *log.Logger) []twig.Option {
	return []twig.Option{
		twig.WithCompression(viper.GetBool("compression.enabled"), viper.GetInt("compression.level")),
		twig.WithCacheSize(viper.GetInt("cache.size")),
		twig.WithSplitStrategy(twig.SplitStrategy(viper.GetString("merge.split_strategy"))),
		twig.WithTransferConcurrency(viper.GetInt("transfer.concurrency")),
		twig.WithLogger(logger),
	}
}

// withRepo opens the repository, runs fn and saves the state if fn
// succeeded.
func withRepo(fn func(*twig.Repository) error) (err error) {
	logger, closer := newLogger()
	defer closer.Close()

	repo, err := twig.Open(workDir(), repoOptions(logger)...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fn(repo); err != nil {
		return err
	}
	return repo.Save()
}
