package evaluator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/pkg/types"
)

const (
	// DefaultMaxAttempts is the number of calls made before giving up
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the pause between attempts
	DefaultRetryDelay = 15 * time.Second
)

// RetryConfig configures fixed-delay retry of transient failures
type RetryConfig struct {
	MaxAttempts int           // Total calls, including the first
	Delay       time.Duration // Pause between calls
}

// DefaultRetryConfig returns the defaults used against rate-limited APIs
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultRetryDelay,
	}
}

// TransientError marks a failure worth retrying: rate limiting, a 5xx
// response or a network timeout
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is marked as retryable
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// classifyStatus marks err transient for 429 and 5xx responses
func classifyStatus(err error, status int) error {
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return &TransientError{Err: err}
	}
	return err
}

// classifyNetwork marks network timeouts transient
func classifyNetwork(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransientError{Err: err}
	}
	return err
}

// retryFixed calls fn until it succeeds, fails permanently or runs out of
// attempts. Only transient errors are retried. Exhausting the attempts
// wraps the last error in types.ErrServiceUnavailable.
func retryFixed[T any](ctx context.Context, config RetryConfig, log *logger.Logger, fn func() (T, error)) (T, error) {
	var zero T
	attempts := max(config.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if !IsTransient(err) {
			return zero, err
		}

		if attempt >= attempts {
			return zero, fmt.Errorf("%w after %d attempts: %w", types.ErrServiceUnavailable, attempts, err)
		}

		log.Warn().Err(err).
			Int("attempt", attempt).
			Dur("delay", config.Delay).
			Msg("evaluation service busy, retrying")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(config.Delay):
		}
	}
}
