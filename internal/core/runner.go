package core

import (
	"context"
	"io"
	"os/exec"
)

// CommandRunner is an interface for running commands, allowing for testing with mocks
type CommandRunner interface {
	CommandContext(ctx context.Context, name string, arg ...string) Command
}

// Command is an interface for exec.Cmd, allowing for testing with mocks
type Command interface {
	SetEnv(env []string)
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	Run() error
}

// execCommand wraps exec.Cmd to implement Command interface
type execCommand struct {
	*exec.Cmd
}

func (e *execCommand) SetEnv(env []string) {
	e.Env = env
}

func (e *execCommand) SetStdout(w io.Writer) {
	e.Stdout = w
}

func (e *execCommand) SetStderr(w io.Writer) {
	e.Stderr = w
}

// Explicitly forward Run from *exec.Cmd to satisfy the Command interface
// (even though it's already available through embedding, this makes it explicit for the linter)
func (e *execCommand) Run() error {
	return e.Cmd.Run()
}

// Interface guard for execCommand
var _ Command = &execCommand{}

// ExecCommandRunner wraps exec.CommandContext to implement CommandRunner
type ExecCommandRunner struct{}

// NewExecCommandRunner creates the CommandRunner used in production.
func NewExecCommandRunner() *ExecCommandRunner {
	return &ExecCommandRunner{}
}

func (e *ExecCommandRunner) CommandContext(ctx context.Context, name string, arg ...string) Command {
	return &execCommand{Cmd: exec.CommandContext(ctx, name, arg...)}
}

// Interface guard for ExecCommandRunner
var _ CommandRunner = &ExecCommandRunner{}

// MockCall records a single command invocation made through a MockCommandRunner.
type MockCall struct {
	Name string
	Args []string
	Env  []string
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
// It can be used across packages to test code that depends on CommandRunner.
type MockCommandRunner struct {
	RunErr  error
	RunFunc func(call MockCall) error
	Calls   []MockCall
}

func (m *MockCommandRunner) CommandContext(_ context.Context, name string, arg ...string) Command {
	return &mockCommand{runner: m, call: MockCall{Name: name, Args: arg}}
}

// Interface guard
var _ CommandRunner = &MockCommandRunner{}

type mockCommand struct {
	runner *MockCommandRunner
	call   MockCall
}

func (c *mockCommand) SetEnv(env []string) {
	c.call.Env = env
}

func (c *mockCommand) SetStdout(io.Writer) {}

func (c *mockCommand) SetStderr(io.Writer) {}

func (c *mockCommand) Run() error {
	c.runner.Calls = append(c.runner.Calls, c.call)
	if c.runner.RunFunc != nil {
		return c.runner.RunFunc(c.call)
	}
	return c.runner.RunErr
}

// Interface guard
var _ Command = &mockCommand{}
