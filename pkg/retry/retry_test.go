package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-art/lambdaart-api/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test"})
	m.Run()
}

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test-op", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test-op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	sentinel := errors.New("down")
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "test-op", func() error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	// Initial attempt plus three retries
	assert.Equal(t, 4, calls)
}

func TestDo_NonRetryableErrorStopsImmediately(t *testing.T) {
	sentinel := errors.New("bad input")
	policy := fastPolicy(3)
	policy.RetryableErrors = func(err error) bool { return false }

	calls := 0
	err := Do(context.Background(), policy, "test-op", func() error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	policy := fastPolicy(5)
	policy.InitialDelay = 100 * time.Millisecond
	policy.MaxDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Do(ctx, policy, "test-op", func() error {
			calls++
			return errors.New("transient")
		})
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastPolicy(2), "test-op", func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestCalculateDelay_Exponential(t *testing.T) {
	policy := Policy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, policy))
	assert.Equal(t, 200*time.Millisecond, calculateDelay(1, policy))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(2, policy))
	// Capped at MaxDelay
	assert.Equal(t, time.Second, calculateDelay(5, policy))
}

func TestCalculateDelay_Linear(t *testing.T) {
	policy := Policy{
		InitialDelay: time.Second,
		MaxDelay:     3 * time.Second,
		Linear:       true,
	}

	assert.Equal(t, 1*time.Second, calculateDelay(0, policy))
	assert.Equal(t, 2*time.Second, calculateDelay(1, policy))
	assert.Equal(t, 3*time.Second, calculateDelay(2, policy))
	// Capped at MaxDelay
	assert.Equal(t, 3*time.Second, calculateDelay(3, policy))
}

func TestConnectivityProbePolicy(t *testing.T) {
	policy := ConnectivityProbePolicy()

	assert.Equal(t, 3, policy.MaxRetries)
	assert.True(t, policy.Linear)
	assert.False(t, policy.Jitter)
	assert.Equal(t, 1*time.Second, calculateDelay(0, policy))
	assert.Equal(t, 2*time.Second, calculateDelay(1, policy))
	assert.Equal(t, 3*time.Second, calculateDelay(2, policy))
}
