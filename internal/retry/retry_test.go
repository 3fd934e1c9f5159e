package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"ragcore/internal/domain"
)

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultPolicy(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	calls := 0
	wantErr := errors.New("still broken")
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Retryable:   domain.Retryable,
	}
	calls := 0
	err := Do(context.Background(), p, func(context.Context) error {
		calls++
		return domain.NewValidationError("dimension", "mismatch")
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("validation errors must not be retried, got %d calls", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, p, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls >= 10 {
		t.Errorf("cancellation should stop further attempts, got %d", calls)
	}
}

func TestBackoffGrowsAndStaysBounded(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt-1))
		got := Backoff(base, 30*time.Second, attempt)
		if got < expected*3/4 || got > expected*5/4 {
			t.Errorf("attempt %d: expected %v +/- 25%%, got %v", attempt, expected, got)
		}
	}
	// High attempts are capped at max plus jitter.
	if got := Backoff(time.Second, 30*time.Second, 100); got > 37500*time.Millisecond {
		t.Errorf("backoff exceeds cap: %v", got)
	}
}

func TestBackoffHandlesSubNanosecondJitterWindow(t *testing.T) {
	// A 1ns delay has no room for jitter; it must not panic.
	if got := Backoff(1, 1, 1); got != 1 {
		t.Errorf("expected bare 1ns delay, got %v", got)
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	fail := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("breaker open too early at %d", i)
		}
		b.Record(fail)
	}
	if err := b.Allow(); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestBreakerClosesAfterCooldown(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	current := time.Now()
	b.now = func() time.Time { return current }

	b.Record(errors.New("boom"))
	if err := b.Allow(); err == nil {
		t.Fatal("expected open circuit")
	}

	current = current.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected closed circuit after cooldown, got %v", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(2, time.Minute)
	b.Record(errors.New("one"))
	b.Record(nil)
	b.Record(errors.New("two"))
	if err := b.Allow(); err != nil {
		t.Fatalf("success should reset the streak, got %v", err)
	}
}

func TestBreakerDisabled(t *testing.T) {
	b := NewBreaker(0, time.Minute)
	for i := 0; i < 10; i++ {
		b.Record(errors.New("boom"))
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("disabled breaker must always allow, got %v", err)
	}
}
