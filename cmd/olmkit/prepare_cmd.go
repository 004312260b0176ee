package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/olmkit/olmkit/internal/config"
	"github.com/olmkit/olmkit/internal/core"
	"github.com/olmkit/olmkit/internal/pipeline"
)

// newPrepareCmd creates the prepare command
func newPrepareCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
		prettyLog  bool
		next       bool
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Provision helper tools, run the catalog installer, and configure the subscription",
		Long: `Prepare runs the full pre-release sequence: ensure umoci and opm are
available (downloading version-pinned release binaries if needed), download
and execute the catalog installer script with bounded retries, export the
subscription configuration, and delegate to the external configuration step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(cmd.Context(), configPath, debug, prettyLog, next)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to olmkit.yaml config file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable verbose logging and set the DEBUG marker for delegated steps")
	cmd.Flags().BoolVar(&prettyLog, "pretty", false, "Use pretty-printed logs instead of JSON")
	cmd.Flags().BoolVar(&next, "next", false, "Install from the next release channel instead of the latest")

	return cmd
}

// initRuntime loads configuration and initializes the global logger from it,
// with the debug and pretty flags taking precedence over configured values.
func initRuntime(configPath string, debug, prettyLog bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := core.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if debug {
		level = zapcore.DebugLevel
	}

	pretty := prettyLog || cfg.LogFormat == config.LogFormatPretty
	if err := core.Init(pretty, level); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runPrepare(ctx context.Context, configPath string, debug, prettyLog, next bool) error {
	// The DEBUG environment variable (or OLMKIT_DEBUG) acts like --debug.
	debug = debug || core.GetEnv(core.EnvDebug) == "true"

	cfg, err := initRuntime(configPath, debug, prettyLog)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, pipeline.Options{Debug: debug, Next: next})
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("prepare failed: %w", err)
	}

	return nil
}
