package repo

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if got != 7 || calls != 3 {
		t.Fatalf("got=%d calls=%d, want 7 after 3 calls", got, calls)
	}
}

func TestWithRetry_PermanentErrorNotRetried(t *testing.T) {
	sentinel := errors.New("name: is required")
	calls := 0
	_, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent error retried %d times", calls)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("permanent error must not be marked unavailable")
	}
}

func TestWithRetry_ExhaustionWrapsErrUnavailable(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("database is busy")
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after exhaustion, got %v", err)
	}
	if calls != retryMaxTries {
		t.Fatalf("expected %d attempts, got %d", retryMaxTries, calls)
	}
}

func TestWithRetryErr(t *testing.T) {
	if err := WithRetryErr(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("WithRetryErr: %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Fatalf("nil is not transient")
	}
	if !IsTransient(errors.New("database table is locked")) {
		t.Fatalf("lock errors are transient")
	}
	if IsTransient(errors.New("UNIQUE constraint failed")) {
		t.Fatalf("constraint errors are not transient")
	}
}
