// Package testing provides utilities shared by olmkit's tests.
package testing

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olmkit/olmkit/internal/core"
)

// CapturedOutput redirects the process-level stdout and stderr into pipes so
// tests can assert on output written through os.Stdout/os.Stderr directly,
// including the global logger's sinks.
type CapturedOutput struct {
	originalStdout *os.File
	originalStderr *os.File
	stdoutR        *os.File
	stderrR        *os.File
	stdoutW        *os.File
	stderrW        *os.File
}

// NewCapturedOutput starts capturing stdout and stderr. Call Stop exactly
// once to restore the streams and collect what was written.
func NewCapturedOutput() (*CapturedOutput, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		core.LogDeferredError(stdoutR.Close)
		core.LogDeferredError(stdoutW.Close)
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	return &CapturedOutput{
		originalStdout: originalStdout,
		originalStderr: originalStderr,
		stdoutR:        stdoutR,
		stderrR:        stderrR,
		stdoutW:        stdoutW,
		stderrW:        stderrW,
	}, nil
}

// Stop restores the original streams and returns the captured stdout and
// stderr contents.
func (c *CapturedOutput) Stop() (string, string, error) {
	// Restore the streams before closing the write ends so late writers hit
	// the real stdout/stderr instead of a closed pipe.
	os.Stdout = c.originalStdout
	os.Stderr = c.originalStderr

	core.LogDeferredError(c.stdoutW.Close)
	core.LogDeferredError(c.stderrW.Close)

	// Give pending writers a moment to flush.
	time.Sleep(10 * time.Millisecond)

	defer core.LogDeferredError(c.stdoutR.Close)
	defer core.LogDeferredError(c.stderrR.Close)

	capturedStdout, err := io.ReadAll(c.stdoutR)
	if err != nil {
		return "", "", fmt.Errorf("failed to read captured stdout: %w", err)
	}

	capturedStderr, err := io.ReadAll(c.stderrR)
	if err != nil {
		return "", "", fmt.Errorf("failed to read captured stderr: %w", err)
	}

	return string(capturedStdout), string(capturedStderr), nil
}
