package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	// build time date
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
		prettyLog  bool
		next       bool
	)

	rootCmd := &cobra.Command{
		Use:   "olmkit",
		Short: "RHDH pre-release OLM catalog subscription preparer",
		Long: `olmkit prepares the OLM catalog subscription used by the RHDH pre-release
validation workflow: it provisions the umoci and opm helper binaries, runs
the catalog installer script with bounded retries, and hands the subscription
configuration to the external configuration step.`,
		Version: fmt.Sprintf("%s (built: %s)", version, buildDate),
		Args:    cobra.NoArgs,
		// Default to the prepare command when no subcommand is provided
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(cmd.Context(), configPath, debug, prettyLog, next)
		},
	}

	// Prepare flags are also available on the root command so a bare
	// "olmkit" run behaves like "olmkit prepare".
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to olmkit.yaml config file")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable verbose logging and set the DEBUG marker for delegated steps")
	rootCmd.Flags().BoolVar(&prettyLog, "pretty", false, "Use pretty-printed logs instead of JSON")
	rootCmd.Flags().BoolVar(&next, "next", false, "Install from the next release channel instead of the latest")

	// Add subcommands
	rootCmd.AddCommand(newPrepareCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
