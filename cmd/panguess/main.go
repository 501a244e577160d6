// Package main provides the panguess command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// logger is built from --verbose before any command runs.
var logger = zap.NewNop()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	logger.Sync() //nolint:errcheck
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsage
	}
	return ExitError
}

// usageError marks errors caused by bad flags or arguments.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

// usageArgs wraps a positional argument validator so its errors map to
// ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	root := &cobra.Command{
		Use:   "panguess",
		Short: "Consolidated gene prediction for genome assemblies",
		Long: `panguess predicts protein-coding genes by combining Exonerate alignments
of reference proteins, GeneMark-ES ab initio calls and TransDecoder ORFs
found in the remaining non-coding regions.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.panguess.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging, including external tool output")

	root.AddCommand(
		newPredictCmd(),
		newNormalizeCmd(),
		newMergeCmd(),
		newNCRCmd(),
		newStatsCmd(),
		newBuscoCmd(),
		newConfigCmd(),
	)
	return root
}

// setDefaults registers default values for every config key.
func setDefaults() {
	viper.SetDefault("tools.exonerate", "exonerate")
	viper.SetDefault("tools.genemark", "gmes_petap.pl")
	viper.SetDefault("tools.gtf_extract", "get_sequence_from_GTF.pl")
	viper.SetDefault("tools.transdecoder_longorfs", "TransDecoder.LongOrfs")
	viper.SetDefault("tools.transdecoder_predict", "TransDecoder.Predict")
	viper.SetDefault("tools.busco", "busco")

	viper.SetDefault("predict.cores", 1)
	viper.SetDefault("predict.workers", 0)
	viper.SetDefault("predict.fungus", false)
	viper.SetDefault("predict.td_min_length", 100)
	viper.SetDefault("predict.exonerate_percent", 90)
	viper.SetDefault("predict.exonerate_bestn", 1)
	viper.SetDefault("predict.min_length_ratio", 0.0)
	viper.SetDefault("predict.full_overlap", false)
}

// initConfig reads the config file and PANGUESS_ environment overrides.
// A missing default config file is not an error.
func initConfig(cfgFile string) error {
	setDefaults()

	viper.SetEnvPrefix("panguess")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	path := filepath.Join(home, ".panguess.yaml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// newLogger logs info and above to stderr, or everything with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// createOutput returns stdout for "" or "-", otherwise a new file.
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
