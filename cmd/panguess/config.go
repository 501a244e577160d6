package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage panguess configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.panguess.yaml.",
		Example: `  panguess config                                  # show all config
  panguess config set tools.genemark /opt/gmes/gmes_petap.pl
  panguess config set predict.fungus true
  panguess config get predict.exonerate_percent`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", f)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".panguess.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if !viper.IsSet(key) {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
	return nil
}
