package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/olmkit/olmkit/internal/config"
	"github.com/olmkit/olmkit/internal/core"
)

// newConfigCmd creates the config command and its subcommands
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get, set, and list configuration values",
		Long: `Manage olmkit configuration. Values are resolved with precedence:
environment (OLMKIT_*) > project config (./olmkit.yaml) > user config
(~/.olmkit/config.yaml) > built-in defaults.`,
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a configuration value and its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := config.GetConfigValue(args[0])
			if err != nil {
				return err
			}
			core.MustFprintf(cmd.OutOrStdout(), "%v (%s)\n", value.Value, value.Source)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Writes to the project config (./olmkit.yaml)
if it exists, otherwise to the user config (~/.olmkit/config.yaml).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetConfigValue(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to set config value: %w", err)
			}
			core.MustFprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values with their sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := config.ListConfig()
			if err != nil {
				return err
			}

			for _, key := range slices.Sorted(maps.Keys(values)) {
				core.MustFprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", key, values[key].Value, values[key].Source)
			}
			return nil
		},
	}
}
