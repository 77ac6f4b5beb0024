package utils

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Logger: NewDiscardLogger(), Sleep: noSleep}

	err := r.Do(context.Background(), "type-location", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("element not interactable")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryWrapsLastError(t *testing.T) {
	sentinel := errors.New("boom")
	r := &RetryConfig{MaxAttempts: 2, Logger: NewDiscardLogger(), Sleep: noSleep}

	err := r.Do(context.Background(), "navigate", func(context.Context) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}

func TestRetryStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := &RetryConfig{MaxAttempts: 5, Logger: NewDiscardLogger(), Sleep: noSleep}

	err := r.Do(ctx, "fill-dates", func(context.Context) error {
		calls++
		cancel()
		return errors.New("detached")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestJitterBetweenStaysInRange(t *testing.T) {
	j := NewJitter(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		d := j.Between(4*time.Second, 5*time.Second)
		require.GreaterOrEqual(t, d, 4*time.Second)
		require.LessOrEqual(t, d, 5*time.Second)
	}
	require.Equal(t, time.Second, j.Between(time.Second, time.Second))
}
