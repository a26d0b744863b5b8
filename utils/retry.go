package utils

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Retry calls fn up to attempts times, sleeping delay between failed attempts.
// It stops early on success, on a permanent error or when ctx is done.
// Failed attempts are logged at debug level.
func Retry(ctx context.Context, logger *logrus.Entry, attempts int, delay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if logger != nil {
			logger.Debugf("Attempt %d: %v", i, err)
		}
		if IsPermanent(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		if err := sleepContext(ctx, delay); err != nil {
			return errors.Wrap(err, lastErr.Error())
		}
	}
	return errors.Wrapf(ErrRetriesExhausted, "after %d attempts: %v", attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
