package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps the tests quick while exercising the real backoff loop.
func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts:         attempts,
		InitialInterval:     time.Millisecond,
		MaxInterval:         2 * time.Millisecond,
		Multiplier:          1.5,
		RandomizationFactor: 0,
	}
}

func TestExecute_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("always failing")
	err := fastPolicy(4).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls, "MaxAttempts counts the first try")
}

func TestExecute_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	cause := errors.New("tenant has no pillars")
	err := fastPolicy(5).Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, cause)
}

func TestExecute_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy(100).Execute(ctx, func(ctx context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("keep going")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, calls, 3, "cancellation aborts between attempts")
}

func TestExecuteNotify_ReportsEachRetry(t *testing.T) {
	var notified []error
	calls := 0
	err := fastPolicy(3).ExecuteNotify(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	}, func(err error, next time.Duration) {
		notified = append(notified, err)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, notified, 2, "notify fires before each wait, not after the last failure")
}

func TestIsPermanent_WrappedChain(t *testing.T) {
	err := Permanent(errors.New("root"))
	wrapped := errors.Join(errors.New("outer"), err)

	assert.True(t, IsPermanent(wrapped))
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.False(t, IsPermanent(nil))
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.InitialInterval)
	assert.Equal(t, 4*time.Minute, p.MaxElapsedTime)
}
