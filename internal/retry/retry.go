// Package retry runs fallible external actions under a bounded retry policy
// with a fixed delay between attempts.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Policy bounds the retries of a single action. Attempts are counted from 1;
// the wait applies only between attempts, never after the final failure.
type Policy struct {
	MaxAttempts int           `validate:"gte=1"`
	Wait        time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Validate checks that the policy describes a runnable retry loop.
func (p Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("retry policy validation failed: %w", err)
	}
	return nil
}

// ExhaustedError is returned when every attempt failed. The orchestrator
// turns it into a fatal, non-zero exit.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Interface guard for ExhaustedError
var _ error = &ExhaustedError{}

// Invoker runs operations under a Policy.
type Invoker struct {
	clock clockwork.Clock
}

// NewInvoker creates a new invoker with a real clock
func NewInvoker() *Invoker {
	return NewInvokerWithClock(clockwork.NewRealClock())
}

// NewInvokerWithClock creates a new invoker with a custom clock
// This is useful for testing with a fake clock
func NewInvokerWithClock(clock clockwork.Clock) *Invoker {
	return &Invoker{clock: clock}
}

// Run executes op until it succeeds or the policy is exhausted. Failures are
// treated uniformly; the operation's error is never inspected beyond logging.
// Every failed attempt is logged with its attempt count. The wait is applied
// between attempts only: after the final failed attempt Run returns an
// ExhaustedError immediately.
func (i *Invoker) Run(ctx context.Context, policy Policy, op func(context.Context) error) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		zap.L().Warn("Attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(lastErr))

		if attempt == policy.MaxAttempts {
			break
		}

		zap.L().Info("Waiting before next attempt", zap.Duration("wait", policy.Wait))
		select {
		case <-i.clock.After(policy.Wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return &ExhaustedError{Attempts: policy.MaxAttempts, Err: lastErr}
}
