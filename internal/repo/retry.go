// Package repo implements the persistence layer for domain entities,
// backed by GORM. This file provides WithRetry, a bounded
// exponential-backoff combinator wrapped around storage-touching calls.
//
// SQLite under WAL rejects a writer with "database is locked" / "database
// is busy" while another connection holds the write lock. Those failures
// are transient, so the HTTP layer wraps each service call in WithRetry
// rather than teaching the core about retries. Domain errors (validation,
// not-found, confirmation) are permanent and pass through untouched on the
// first attempt.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrUnavailable marks a storage failure that persisted through every
// retry attempt. Handlers map it to 503 so clients know to try again.
var ErrUnavailable = errors.New("storage temporarily unavailable")

// retry tuning; small initial delay since sqlite write locks are held for
// milliseconds.
const (
	retryMaxTries        = 3
	retryInitialInterval = 100 * time.Millisecond
)

// WithRetry runs op, retrying with exponential backoff while it fails with
// a transient storage error. Non-transient errors abort immediately and
// are returned unchanged. Once attempts are exhausted the last error is
// wrapped in ErrUnavailable.
func WithRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval

	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(retryMaxTries))

	if err != nil && IsTransient(err) {
		return v, errors.Join(ErrUnavailable, err)
	}
	return v, err
}

// WithRetryErr is WithRetry for operations that return only an error.
func WithRetryErr(ctx context.Context, op func() error) error {
	_, err := WithRetry(ctx, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

// IsTransient reports whether err looks like a transient SQLite contention
// failure worth retrying. The driver exposes these only as message text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "database is busy") ||
		strings.Contains(msg, "sqlite_busy")
}
