// Package pipeline sequences the pre-release catalog subscription
// preparation: provision the helper binaries, run the catalog installer
// script under a bounded retry policy, then delegate the subscription
// configuration to the external configuration step.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/olmkit/olmkit/internal/config"
	"github.com/olmkit/olmkit/internal/core"
	"github.com/olmkit/olmkit/internal/fetch"
	"github.com/olmkit/olmkit/internal/provision"
	"github.com/olmkit/olmkit/internal/retry"
	"github.com/olmkit/olmkit/internal/subscription"
)

const installerScriptName = "install-catalog-source.sh"

// Options adjust a single run.
type Options struct {
	// Debug sets the DEBUG marker in the execution context so delegated
	// steps can raise their own verbosity.
	Debug bool
	// Next installs from the next release channel instead of the latest.
	Next bool
}

// Components are the pipeline's injectable collaborators.
// Production code uses New; tests swap in mocks through NewWithComponents.
type Components struct {
	Locator      provision.Locator
	Fetcher      fetch.Fetcher
	Runner       core.CommandRunner
	Invoker      *retry.Invoker
	Configurator subscription.Configurator
	Stdout       io.Writer
	Stderr       io.Writer
}

// Pipeline runs the preparation sequence. Execution is strictly sequential
// and fails fast: the first error aborts the whole run.
type Pipeline struct {
	cfg   *config.Config
	opts  Options
	comps Components
}

// New creates a pipeline wired with the production components.
func New(cfg *config.Config, opts Options) *Pipeline {
	runner := core.NewExecCommandRunner()
	return NewWithComponents(cfg, opts, Components{
		Locator:      provision.NewSystemLocator(),
		Fetcher:      fetch.NewHTTPFetcher(),
		Runner:       runner,
		Invoker:      retry.NewInvoker(),
		Configurator: subscription.NewCommandConfigurator(runner, cfg.ConfigureCommand, os.Stdout, os.Stderr),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	})
}

// NewWithComponents creates a pipeline with explicit collaborators.
// This is useful for testing without network access or real processes.
func NewWithComponents(cfg *config.Config, opts Options, comps Components) *Pipeline {
	return &Pipeline{cfg: cfg, opts: opts, comps: comps}
}

// Run executes the preparation sequence against a fresh execution context
// seeded from the process environment.
func (p *Pipeline) Run(ctx context.Context) error {
	ec := core.NewExecutionContext()
	if p.opts.Debug {
		ec.Setenv(core.EnvDebug, "true")
	}

	prov := provision.NewProvisioner(p.comps.Locator, p.comps.Fetcher)
	for _, spec := range p.cfg.ToolSpecs() {
		if err := prov.Ensure(ctx, spec, ec); err != nil {
			return fmt.Errorf("failed to provision tool '%s': %w", spec.Name, err)
		}
	}

	scriptPath, err := p.downloadInstaller(ctx)
	if err != nil {
		return err
	}

	if err := p.runInstaller(ctx, scriptPath, ec); err != nil {
		return err
	}

	p.cfg.SubscriptionSettings().Export(ec)
	if err := p.comps.Configurator.Configure(ctx, ec); err != nil {
		return fmt.Errorf("failed to configure subscription: %w", err)
	}

	core.MustFprintf(p.comps.Stdout, "Done\n")
	return nil
}

// downloadInstaller fetches the installer script into a fresh temp directory
// and marks it executable. Like the provisioned tools, the directory lives
// for the rest of the process.
func (p *Pipeline) downloadInstaller(ctx context.Context) (string, error) {
	tempDir, err := os.MkdirTemp("", "olmkit-installer-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	scriptPath := filepath.Join(tempDir, installerScriptName)
	if err := fetch.DownloadExecutable(ctx, p.comps.Fetcher, p.cfg.InstallerURL, scriptPath); err != nil {
		if removeErr := os.RemoveAll(tempDir); removeErr != nil {
			zap.L().Warn("Failed to clean up temp directory after failed download",
				zap.String("dir", tempDir), zap.Error(removeErr))
		}
		return "", fmt.Errorf("failed to download installer script: %w", err)
	}

	zap.L().Info("Installer script downloaded",
		zap.String("url", p.cfg.InstallerURL),
		zap.String("path", scriptPath))
	return scriptPath, nil
}

// runInstaller executes the installer script under the configured retry
// policy. Any non-zero exit is treated uniformly as a failed attempt.
func (p *Pipeline) runInstaller(ctx context.Context, scriptPath string, ec *core.ExecutionContext) error {
	arg := "--latest"
	if p.opts.Next {
		arg = "--next"
	}

	err := p.comps.Invoker.Run(ctx, p.cfg.RetryPolicy(), func(attemptCtx context.Context) error {
		cmd := p.comps.Runner.CommandContext(attemptCtx, scriptPath, arg)
		cmd.SetEnv(ec.Environ())
		cmd.SetStdout(p.comps.Stdout)
		cmd.SetStderr(p.comps.Stderr)
		return cmd.Run()
	})
	if err != nil {
		return fmt.Errorf("installer script failed: %w", err)
	}

	return nil
}
