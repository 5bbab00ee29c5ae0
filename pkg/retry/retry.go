package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"go.uber.org/zap"
)

// Policy holds retry configuration. A Policy is a plain value so callers
// can pass the retry behaviour into an operation instead of hardcoding it.
type Policy struct {
	// MaxRetries is the maximum number of retry attempts after the first try
	MaxRetries int
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration
	// Multiplier is the factor by which delay increases (exponential mode)
	Multiplier float64
	// Linear makes the delay grow as InitialDelay * attempt number
	// instead of exponentially
	Linear bool
	// Jitter adds randomness to delays to prevent thundering herd
	Jitter bool
	// RetryableErrors is a function to determine if an error should be retried
	RetryableErrors func(error) bool
}

// DefaultPolicy returns sensible retry defaults
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryableErrors: func(err error) bool {
			// By default, retry all errors
			return true
		},
	}
}

// ConnectivityProbePolicy returns the policy used by the store
// connectivity probe before a write: three retries with linearly
// increasing waits of 1s, 2s and 3s.
func ConnectivityProbePolicy() Policy {
	p := DefaultPolicy()
	p.MaxRetries = 3
	p.InitialDelay = 1 * time.Second
	p.MaxDelay = 3 * time.Second
	p.Linear = true
	p.Jitter = false
	return p
}

// Do executes the function with retry logic
func Do(ctx context.Context, policy Policy, operation string, fn func() error) error {
	_, err := DoWithResult(ctx, policy, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult executes the function with retry logic and returns a result
func DoWithResult[T any](ctx context.Context, policy Policy, operation string, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		res, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return res, nil
		}

		lastErr = err

		if policy.RetryableErrors != nil && !policy.RetryableErrors(err) {
			logger.Warn("Non-retryable error encountered",
				zap.String("operation", operation),
				zap.Error(err))
			return result, err
		}

		// Don't sleep after the last attempt
		if attempt == policy.MaxRetries {
			break
		}

		delay := calculateDelay(attempt, policy)

		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", policy.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(delay):
		}
	}

	logger.Error("Operation failed after all retries",
		zap.String("operation", operation),
		zap.Int("max_retries", policy.MaxRetries),
		zap.Error(lastErr))

	return result, fmt.Errorf("operation failed after %d retries: %w", policy.MaxRetries, lastErr)
}

// calculateDelay calculates the delay for the next retry. attempt is
// zero-based: the wait before the first retry uses attempt 0.
func calculateDelay(attempt int, policy Policy) time.Duration {
	var delay float64
	if policy.Linear {
		// InitialDelay, 2*InitialDelay, 3*InitialDelay, ...
		delay = float64(policy.InitialDelay) * float64(attempt+1)
	} else {
		delay = float64(policy.InitialDelay) * math.Pow(policy.Multiplier, float64(attempt))
	}

	// Cap at max delay
	if policy.MaxDelay > 0 && delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}

	// Add jitter if enabled (±25% randomness)
	if policy.Jitter {
		jitterRange := delay * 0.25
		//nolint:gosec // G404: math/rand is sufficient for retry jitter, crypto/rand not needed
		jitter := (rand.Float64() * 2 * jitterRange) - jitterRange
		delay += jitter
	}

	return time.Duration(delay)
}
