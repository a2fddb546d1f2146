package abstract

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/datazip-inc/olake-hubspot/constants"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
)

// RetryOnBackoff retries f with exponential backoff starting at sleep.
// Non-retryable errors and context cancellation stop the loop.
func RetryOnBackoff(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = sleep
	policy.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := f()
		if err == nil {
			return nil
		}
		if errors.Is(err, constants.ErrNonRetryable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx), func(err error, wait time.Duration) {
		logger.Infof("retry attempt[%d], retrying after %.2f seconds due to err: %s", attempt, wait.Seconds(), err)
	})
}
