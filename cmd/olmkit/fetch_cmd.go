package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olmkit/olmkit/internal/core"
	"github.com/olmkit/olmkit/internal/fetch"
	"github.com/olmkit/olmkit/internal/provision"
)

// newFetchCmd creates the fetch command
func newFetchCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
		prettyLog  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch TOOL-NAME",
		Short: "Provision a single helper binary",
		Long: `Fetch ensures one of the configured helper binaries (umoci, opm) is
available, downloading the version-pinned release artifact for the current
platform if it is not already on PATH.

Examples:
  olmkit fetch umoci
  olmkit fetch opm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initRuntime(configPath, debug, prettyLog)
			if err != nil {
				return err
			}

			toolName := args[0]
			specs := cfg.ToolSpecs()

			var spec *provision.ToolSpec
			for i := range specs {
				if specs[i].Name == toolName {
					spec = &specs[i]
					break
				}
			}

			if spec == nil {
				// Try to suggest similar tool
				suggestion := provision.SuggestSimilarToolName(specs, toolName)
				if suggestion != "" {
					return fmt.Errorf("unknown tool '%s'. Did you mean: %s?", toolName, suggestion)
				}
				return fmt.Errorf("unknown tool '%s'", toolName)
			}

			locator := provision.NewSystemLocator()
			ec := core.NewExecutionContext()

			prov := provision.NewProvisioner(locator, fetch.NewHTTPFetcher())
			if err := prov.Ensure(cmd.Context(), *spec, ec); err != nil {
				return fmt.Errorf("failed to provision tool: %w", err)
			}

			path, err := locator.Look(toolName, ec)
			if err != nil {
				return fmt.Errorf("tool provisioned but not resolvable: %w", err)
			}

			core.MustFprintf(cmd.OutOrStdout(), "%s %s is available at %s\n", toolName, spec.Version, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to olmkit.yaml config file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable verbose logging")
	cmd.Flags().BoolVar(&prettyLog, "pretty", false, "Use pretty-printed logs instead of JSON")

	return cmd
}
