// ABOUTME: Generic retry-with-backoff executor used by every network-calling component
// ABOUTME: Policies pair an attempt budget with a named retryability predicate

package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"syscall"
	"time"

	coreerrors "article-enhancer/core/errors"
	"article-enhancer/core/interfaces"
)

// Policy controls how an operation is retried
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first call
	MaxAttempts int

	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff
	MaxDelay time.Duration

	// Retryable decides whether an error is worth retrying
	Retryable func(error) bool
}

// DefaultPolicy retries transport failures, timeouts, 5xx and 429.
// Used by gateway, search, and LLM calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Retryable:   IsRetryable,
	}
}

// ScrapingPolicy is stricter: a smaller budget because repeated scraping
// attempts risk triggering anti-bot defenses, but a wider predicate that
// retries everything except a definitive client error.
func ScrapingPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Retryable:   IsRetryableForScraping,
	}
}

// IsRetryable is the default predicate: connection resets, DNS failures,
// refused connections, timeouts, 5xx statuses and 429 are retryable;
// other 4xx statuses and auth/validation failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if coreerrors.IsAuth(err) || coreerrors.IsValidation(err) || coreerrors.IsNotFound(err) {
		return false
	}

	if coreerrors.IsRateLimit(err) {
		return true
	}

	if status := coreerrors.StatusCode(err); status != 0 {
		return status >= 500 || status == 429
	}

	return isNetworkError(err)
}

// IsRetryableForScraping retries on anything except a definitive 4xx
// client error (other than 429).
func IsRetryableForScraping(err error) bool {
	if err == nil {
		return false
	}

	if status := coreerrors.StatusCode(err); status >= 400 && status < 500 && status != 429 {
		return false
	}

	return true
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// Do executes op under the policy. Non-retryable errors are returned
// immediately without spending the attempt budget. When attempts are
// exhausted the last error is returned, annotated with the attempt count.
// Errors are never swallowed, only delayed.
func Do(ctx context.Context, logger interfaces.Logger, name string, policy Policy, op func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !policy.Retryable(lastErr) {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		delay := backoff(policy, attempt)
		if logger != nil {
			logger.Warn("Retrying operation", map[string]interface{}{
				"operation": name,
				"attempt":   attempt,
				"delay_ms":  delay.Milliseconds(),
				"error":     lastErr.Error(),
			})
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if logger != nil {
		logger.Error("Retry attempts exhausted", map[string]interface{}{
			"operation": name,
			"attempts":  attempts,
			"error":     lastErr.Error(),
		})
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}

// DoValue is Do for operations that produce a value
func DoValue[T any](ctx context.Context, logger interfaces.Logger, name string, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, logger, name, policy, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

// backoff computes base * 2^(attempt-1) scaled by uniform jitter in
// [0.5, 1.0), capped at MaxDelay.
func backoff(policy Policy, attempt int) time.Duration {
	delay := policy.BaseDelay << uint(attempt-1)
	jitter := 0.5 + rand.Float64()*0.5
	delay = time.Duration(float64(delay) * jitter)

	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}
