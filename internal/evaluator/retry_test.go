package evaluator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/pkg/types"
	"github.com/stretchr/testify/assert"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, 15*time.Second, config.Delay)
}

func TestRetryFixed(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	t.Run("succeeds after transient failure", func(t *testing.T) {
		calls := 0
		result, err := retryFixed(ctx, fastRetry(3), log, func() (string, error) {
			calls++
			if calls < 2 {
				return "", &TransientError{Err: errors.New("429")}
			}
			return "ok", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		_, err := retryFixed(ctx, fastRetry(3), log, func() (int, error) {
			calls++
			return 0, &TransientError{Err: fmt.Errorf("busy %d", calls)}
		})
		assert.ErrorIs(t, err, types.ErrServiceUnavailable)
		assert.Contains(t, err.Error(), "busy 3", "should return last error")
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		permanent := errors.New("bad request")
		_, err := retryFixed(ctx, fastRetry(3), log, func() (int, error) {
			calls++
			return 0, permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.NotErrorIs(t, err, types.ErrServiceUnavailable)
		assert.Equal(t, 1, calls)
	})

	t.Run("fixed delay between attempts", func(t *testing.T) {
		start := time.Now()
		_, _ = retryFixed(ctx, RetryConfig{MaxAttempts: 3, Delay: 10 * time.Millisecond}, log, func() (int, error) {
			return 0, &TransientError{Err: errors.New("busy")}
		})
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("zero attempts still calls once", func(t *testing.T) {
		calls := 0
		_, _ = retryFixed(ctx, RetryConfig{}, log, func() (int, error) {
			calls++
			return 0, &TransientError{Err: errors.New("busy")}
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancellation during delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := retryFixed(ctx, RetryConfig{MaxAttempts: 5, Delay: time.Second}, log, func() (int, error) {
			calls++
			return 0, &TransientError{Err: errors.New("busy")}
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("api error")

	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		err := classifyStatus(base, tt.status)
		assert.Equal(t, tt.transient, IsTransient(err), "status %d", tt.status)
		assert.ErrorIs(t, err, base)
	}
}
