// Package retry provides the retry-with-backoff combinator and the circuit
// breaker that wrap every external-service call.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy bounds a retried operation: attempts, delay growth and which errors
// are worth retrying.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is transient. nil retries everything.
	Retryable func(error) bool
}

// DefaultPolicy matches the embedding/index write discipline: three attempts,
// exponential backoff from 500ms capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
// The last error is returned after budget exhaustion.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(Backoff(p.BaseDelay, p.MaxDelay, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// Backoff returns the exponential delay for an attempt with +/-25% jitter.
// Base delay doubles each attempt and is capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if max <= 0 {
		max = 30 * time.Second
	}
	// Cap the shift to avoid overflow.
	if attempt > 30 {
		attempt = 30
	}
	delay := base * time.Duration(1<<uint(attempt-1))
	if delay > max || delay <= 0 {
		delay = max
	}
	half := int64(delay) / 2
	if half <= 0 {
		return delay
	}
	jitter := time.Duration(rand.Int64N(half)) - delay/4
	return delay + jitter
}
