package retry

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Do executes fn with exponential backoff until it succeeds, maxAttempts is
// reached, or ctx is done. The backoff doubles after each failed attempt
// starting from initialBackoff. Non-retryable errors (like 401, 404) return
// immediately. onRetry, when non-nil, is called before each sleep.
func Do(ctx context.Context, fn func() error, maxAttempts int, initialBackoff time.Duration, onRetry func(attempt int, backoff time.Duration, err error)) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsRetryable(lastErr) && !IsRateLimited(lastErr) {
			return lastErr
		}

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// Use longer backoff for rate limited errors
		sleepDuration := backoff
		if IsRateLimited(lastErr) {
			sleepDuration = backoff * 2
		}
		if onRetry != nil {
			onRetry(attempt, sleepDuration, lastErr)
		}

		timer := time.NewTimer(sleepDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
		backoff *= 2
	}

	return lastErr
}

// IsRetryable returns true if the error is a transient error that should be retried.
// This includes network timeouts and 5xx server errors. Cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode() >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "temporary failure") {
		return true
	}

	return false
}

// IsRateLimited returns true if the error indicates rate limiting (HTTP 429).
func IsRateLimited(err error) bool {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode() == 429
	}
	return false
}
