package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxRetryAfter caps how long a server-requested delay is honoured. A catalog
// asking for more than this is treated as asking for MaxRetryAfter.
const MaxRetryAfter = 30 * time.Second

// RetryableError marks a transient catalog failure (network error, 5xx, 429)
// that [Retry] may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// retryDelayer is implemented by errors that carry the wait the server asked
// for, such as a rate-limit response with a Retry-After header.
type retryDelayer interface {
	RetryDelay() time.Duration
}

// Retry executes fn up to attempts times. Only errors wrapped with
// [RetryableError] are retried; other errors are returned immediately.
//
// The pause between attempts starts at delay and doubles after each failure.
// When the failure carries a server-requested delay that is longer, that
// delay is used instead (see [Wait]). Returns the last error if all attempts
// fail, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !isRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(Wait(err, delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}

// Wait returns the pause before retrying after err: the server-requested
// delay carried by err when it exceeds delay, capped at [MaxRetryAfter], and
// delay otherwise.
func Wait(err error, delay time.Duration) time.Duration {
	var d retryDelayer
	if errors.As(err, &d) {
		if after := min(d.RetryDelay(), MaxRetryAfter); after > delay {
			return after
		}
	}
	return delay
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
