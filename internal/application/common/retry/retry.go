// Package retry runs operations again on transient failures with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatledger/internal/application/common/slogger"

	goretry "github.com/sethvargo/go-retry"
)

// RetryConfig defines retry behavior. JitterPercent randomizes every delay by up to that
// share of it; zero disables jitter.
type RetryConfig struct {
	MaxRetries    uint64        `json:"max_retries" mapstructure:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay" mapstructure:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay" mapstructure:"max_delay"`
	JitterPercent uint64        `json:"jitter_percent" mapstructure:"jitter_percent"`
}

// DefaultRetryConfig returns a default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		JitterPercent: 25,
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func(ctx context.Context) error

// RetryableChecker is an interface for custom retry logic.
// Implement this to provide custom error classification.
type RetryableChecker interface {
	IsRetryable(err error) bool
}

// RetryExecutor handles retry logic with exponential backoff.
type RetryExecutor struct {
	config           *RetryConfig
	retryableChecker RetryableChecker
}

// NewRetryExecutor creates a new retry executor with default retry behavior.
func NewRetryExecutor(config *RetryConfig) *RetryExecutor {
	return NewRetryExecutorWithChecker(config, nil)
}

// NewRetryExecutorWithChecker creates a new retry executor with custom retry behavior.
func NewRetryExecutorWithChecker(config *RetryConfig, checker RetryableChecker) *RetryExecutor {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if checker == nil {
		checker = &DefaultRetryableChecker{}
	}
	return &RetryExecutor{
		config:           config,
		retryableChecker: checker,
	}
}

// backoff builds the delay sequence: exponential from InitialDelay, capped at MaxDelay.
func (r *RetryExecutor) backoff() goretry.Backoff {
	initial := r.config.InitialDelay
	if initial <= 0 {
		initial = time.Millisecond
	}
	b := goretry.NewExponential(initial)
	if r.config.MaxDelay > 0 {
		b = goretry.WithCappedDuration(r.config.MaxDelay, b)
	}
	if r.config.JitterPercent > 0 {
		b = goretry.WithJitterPercent(r.config.JitterPercent, b)
	}
	return goretry.WithMaxRetries(r.config.MaxRetries, b)
}

// Execute executes an operation with retry logic.
func (r *RetryExecutor) Execute(ctx context.Context, operation RetryableOperation) error {
	attempt := 0
	err := goretry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				slogger.Info(ctx, "Operation succeeded after retries", slogger.Field("attempt", attempt))
			}
			return nil
		}

		if !r.retryableChecker.IsRetryable(err) {
			slogger.Debug(ctx, "Error is not retryable", slogger.Fields2(
				"error", err.Error(),
				"attempt", attempt,
			))
			return err
		}

		slogger.Warn(ctx, "Operation failed, will retry", slogger.Fields3(
			"error", err.Error(),
			"attempt", attempt,
			"max_retries", r.config.MaxRetries,
		))
		return goretry.RetryableError(err)
	})
	if err == nil {
		return nil
	}
	if attempt > 1 && ctx.Err() == nil && r.retryableChecker.IsRetryable(err) {
		return fmt.Errorf("operation failed after %d retries: %w", attempt-1, err)
	}
	return err
}

// DefaultRetryableChecker implements basic retry logic for common transient errors.
type DefaultRetryableChecker struct{}

// IsRetryable checks if an error should be retried based on common patterns.
func (d *DefaultRetryableChecker) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Database connection errors
	if containsAny(errStr, []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadlock",
		"connection lost",
		"too many connections",
		"the database system is starting up",
	}) {
		return true
	}

	// Temporary errors
	if containsAny(errStr, []string{
		"temporary",
		"try again",
		"resource temporarily unavailable",
	}) {
		return true
	}

	// Network and NATS errors
	return containsAny(errStr, []string{
		"network is unreachable",
		"no route to host",
		"connection timed out",
		"no servers available",
	})
}

// containsAny checks if the string contains any of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// WithRetry executes a function with retry logic using the default configuration.
func WithRetry(ctx context.Context, operation RetryableOperation) error {
	return NewRetryExecutor(DefaultRetryConfig()).Execute(ctx, operation)
}

// WithRetryConfig executes a function with custom retry configuration.
func WithRetryConfig(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return NewRetryExecutor(config).Execute(ctx, operation)
}
