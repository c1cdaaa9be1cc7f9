package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestDo_SingleAttemptByDefault(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultRetryConfig(), nil, func() error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want transient", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesWhenAllowed(t *testing.T) {
	cfg := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	calls := 0
	err := Do(context.Background(), cfg, func(err error) bool { return errors.Is(err, errTransient) }, func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	cfg := &RetryConfig{Attempts: 5, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), cfg, func(err error) bool { return errors.Is(err, errTransient) }, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
