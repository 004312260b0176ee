// Package subscription applies the OLM catalog subscription configuration
// for RHDH by delegating to an external configuration command. The command
// is opaque: the contract is three exported environment variables going in
// and an exit code coming out.
package subscription

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/olmkit/olmkit/internal/core"
)

// Environment variables the external configuration command reads.
const (
	EnvSubscription = "SUBSCRIPTION"
	EnvChannel      = "CHANNEL"
	EnvSource       = "SOURCE"
)

// Fixed literal values for the RHDH pre-release workflow. Overridable
// through configuration.
const (
	DefaultSubscription     = "rhdh"
	DefaultChannel          = "fast"
	DefaultSource           = "rhdh-fast"
	DefaultConfigureCommand = "configure-subscription"
)

// Settings are the three named values the external configuration step reads.
type Settings struct {
	Subscription string `mapstructure:"subscription" yaml:"subscription" validate:"required"`
	Channel      string `mapstructure:"channel" yaml:"channel" validate:"required"`
	Source       string `mapstructure:"source" yaml:"source" validate:"required"`
}

var validate = validator.New()

// Validate checks that no setting is empty.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("subscription settings validation failed: %w", err)
	}
	return nil
}

// Export sets the settings on the execution context, making them visible to
// every command subsequently run with the context's environment.
func (s Settings) Export(ec *core.ExecutionContext) {
	ec.Setenv(EnvSubscription, s.Subscription)
	ec.Setenv(EnvChannel, s.Channel)
	ec.Setenv(EnvSource, s.Source)
}

// Configurator applies exported subscription settings.
type Configurator interface {
	Configure(ctx context.Context, ec *core.ExecutionContext) error
}

// CommandConfigurator implements Configurator by running an external command
// with the execution context's environment.
type CommandConfigurator struct {
	runner  core.CommandRunner
	command string
	stdout  io.Writer
	stderr  io.Writer
}

// NewCommandConfigurator creates the Configurator used in production.
func NewCommandConfigurator(runner core.CommandRunner, command string, stdout, stderr io.Writer) *CommandConfigurator {
	return &CommandConfigurator{
		runner:  runner,
		command: command,
		stdout:  stdout,
		stderr:  stderr,
	}
}

func (c *CommandConfigurator) Configure(ctx context.Context, ec *core.ExecutionContext) error {
	zap.L().Info("Configuring subscription",
		zap.String("command", c.command),
		zap.String("subscription", ec.Getenv(EnvSubscription)),
		zap.String("channel", ec.Getenv(EnvChannel)),
		zap.String("source", ec.Getenv(EnvSource)))

	cmd := c.runner.CommandContext(ctx, c.command)
	cmd.SetEnv(ec.Environ())
	cmd.SetStdout(c.stdout)
	cmd.SetStderr(c.stderr)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("subscription configuration command '%s' failed: %w", c.command, err)
	}

	return nil
}

// Interface guard for CommandConfigurator
var _ Configurator = &CommandConfigurator{}

// Snapshot captures the context variables a mock configurator observed at
// call time, so tests can assert ordering against later mutations.
type Snapshot struct {
	Subscription string
	Channel      string
	Source       string
	Debug        string
}

// MockConfigurator is a mock implementation of Configurator for testing.
type MockConfigurator struct {
	ConfigureErr error
	Calls        []Snapshot
}

func (m *MockConfigurator) Configure(_ context.Context, ec *core.ExecutionContext) error {
	m.Calls = append(m.Calls, Snapshot{
		Subscription: ec.Getenv(EnvSubscription),
		Channel:      ec.Getenv(EnvChannel),
		Source:       ec.Getenv(EnvSource),
		Debug:        ec.Getenv(core.EnvDebug),
	})
	return m.ConfigureErr
}

// Interface guard
var _ Configurator = &MockConfigurator{}
