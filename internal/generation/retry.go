package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// StatusError carries the HTTP status a provider answered with.
type StatusError struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatusCode exposes the status to errors.As callers.
func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableStatus reports whether a provider status is worth retrying.
func IsRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// IsTransient reports whether err is a timeout, a network timeout, or a
// retryable provider status. Caller cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sc httpStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableStatus(sc.HTTPStatusCode())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// Backoff returns the delay before retry number attempt (1-based): base
// doubled per attempt, capped at max, with +/-20% jitter. A provider
// Retry-After longer than the computed delay wins, still capped at max.
func Backoff(attempt int, base, max time.Duration, lastErr error) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	b := newBackOff(base, max)
	var delay time.Duration
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return capDelay(delay, max, lastErr)
}

func newBackOff(base, max time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	b.MaxInterval = max
	if max <= 0 {
		b.MaxInterval = time.Duration(math.MaxInt64)
	}
	b.Reset()
	return b
}

// nextDelay advances b and applies the max cap and any Retry-After on lastErr.
func nextDelay(b backoff.BackOff, max time.Duration, lastErr error) time.Duration {
	return capDelay(b.NextBackOff(), max, lastErr)
}

func capDelay(delay, max time.Duration, lastErr error) time.Duration {
	if max > 0 && delay > max {
		delay = max
	}
	var se *StatusError
	if errors.As(lastErr, &se) && se.RetryAfter > delay {
		delay = se.RetryAfter
	}
	if max > 0 && delay > max {
		delay = max
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
