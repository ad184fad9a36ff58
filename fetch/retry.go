package fetch

import (
	"context"
	"time"
)

// RetryPolicy bounds the retries of transport failures.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is multiplied by the retry number to get the wait before it.
	BaseDelay time.Duration
}

// DefaultRetryPolicy allows 5 retries, waiting 250ms, 500ms, ... 1250ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  250 * time.Millisecond,
	}
}

// Delay returns the wait before the given retry (1-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	return time.Duration(retry) * p.BaseDelay
}

// sleepContext waits for d or until ctx is done.
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
