package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// captureLogs routes the global logger into an observer for the duration of a test.
func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	observedCore, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(observedCore))
	t.Cleanup(restore)
	return logs
}

// TestRun_FirstAttemptSucceeds tests that a successful command needs no sleeps or warnings
func TestRun_FirstAttemptSucceeds(t *testing.T) {
	logs := captureLogs(t)

	invoker := NewInvokerWithClock(clockwork.NewFakeClock())
	attempts := 0

	err := invoker.Run(context.Background(), Policy{MaxAttempts: 3, Wait: 2 * time.Minute}, func(context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Zero(t, logs.FilterMessage("Attempt failed").Len())
	assert.Zero(t, logs.FilterMessage("Waiting before next attempt").Len())
}

// TestRun_FailuresThenSuccess tests that k < max failures produce exactly k
// warnings and k sleeps before the eventual success
func TestRun_FailuresThenSuccess(t *testing.T) {
	logs := captureLogs(t)

	fakeClock := clockwork.NewFakeClock()
	invoker := NewInvokerWithClock(fakeClock)

	const failures = 2
	attempts := 0
	op := func(context.Context) error {
		attempts++
		if attempts <= failures {
			return errors.New("installer exited 1")
		}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- invoker.Run(context.Background(), Policy{MaxAttempts: 3, Wait: 2 * time.Minute}, op)
	}()

	// Each failed non-final attempt blocks on the clock; release it.
	for i := 0; i < failures; i++ {
		fakeClock.BlockUntil(1)
		fakeClock.Advance(2 * time.Minute)
	}

	require.NoError(t, <-done)
	assert.Equal(t, failures+1, attempts)
	assert.Equal(t, failures, logs.FilterMessage("Attempt failed").Len())
	assert.Equal(t, failures, logs.FilterMessage("Waiting before next attempt").Len())
}

// TestRun_Exhausted tests that max_attempts failures produce max_attempts
// failure logs, max_attempts-1 sleeps, and an ExhaustedError. If the invoker
// slept after the final failure this test would deadlock.
func TestRun_Exhausted(t *testing.T) {
	logs := captureLogs(t)

	fakeClock := clockwork.NewFakeClock()
	invoker := NewInvokerWithClock(fakeClock)

	const maxAttempts = 3
	attempts := 0
	op := func(context.Context) error {
		attempts++
		return errors.New("installer exited 1")
	}

	done := make(chan error, 1)
	go func() {
		done <- invoker.Run(context.Background(), Policy{MaxAttempts: maxAttempts, Wait: 2 * time.Minute}, op)
	}()

	for i := 0; i < maxAttempts-1; i++ {
		fakeClock.BlockUntil(1)
		fakeClock.Advance(2 * time.Minute)
	}

	err := <-done
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, maxAttempts, exhausted.Attempts)
	assert.Contains(t, err.Error(), "failed after 3 attempts")

	assert.Equal(t, maxAttempts, attempts)
	assert.Equal(t, maxAttempts, logs.FilterMessage("Attempt failed").Len())
	assert.Equal(t, maxAttempts-1, logs.FilterMessage("Waiting before next attempt").Len())
}

// TestRun_ContextCanceledDuringWait tests that cancellation interrupts the wait
func TestRun_ContextCanceledDuringWait(t *testing.T) {
	captureLogs(t)

	fakeClock := clockwork.NewFakeClock()
	invoker := NewInvokerWithClock(fakeClock)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- invoker.Run(ctx, Policy{MaxAttempts: 3, Wait: 2 * time.Minute}, func(context.Context) error {
			return errors.New("installer exited 1")
		})
	}()

	fakeClock.BlockUntil(1)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRun_SingleAttemptPolicy tests that max_attempts=1 never sleeps
func TestRun_SingleAttemptPolicy(t *testing.T) {
	logs := captureLogs(t)

	invoker := NewInvokerWithClock(clockwork.NewFakeClock())

	err := invoker.Run(context.Background(), Policy{MaxAttempts: 1, Wait: 2 * time.Minute}, func(context.Context) error {
		return errors.New("installer exited 1")
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.Zero(t, logs.FilterMessage("Waiting before next attempt").Len())
}

// TestPolicy_Validate tests policy validation rules
func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, Policy{MaxAttempts: 1, Wait: 0}.Validate())
	assert.NoError(t, Policy{MaxAttempts: 3, Wait: 2 * time.Minute}.Validate())
	assert.Error(t, Policy{MaxAttempts: 0, Wait: time.Second}.Validate())
	assert.Error(t, Policy{MaxAttempts: 3, Wait: -time.Second}.Validate())
}

// TestRun_InvalidPolicy tests that an invalid policy is rejected before any attempt
func TestRun_InvalidPolicy(t *testing.T) {
	invoker := NewInvoker()
	attempts := 0

	err := invoker.Run(context.Background(), Policy{MaxAttempts: 0}, func(context.Context) error {
		attempts++
		return nil
	})

	require.Error(t, err)
	assert.Zero(t, attempts)
}
