package retry

import (
	"sync"
	"time"

	"ragcore/internal/domain"
)

// Breaker is a consecutive-failure circuit breaker. After Threshold failures
// in a row it opens and short-circuits calls with ErrServiceUnavailable for
// the cool-down window, then allows a probe through.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	now       func() time.Time
}

// NewBreaker creates a Breaker. threshold <= 0 disables it.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Allow reports whether a call may proceed. It returns
// domain.ErrServiceUnavailable while the circuit is open.
func (b *Breaker) Allow() error {
	if b == nil || b.threshold <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.now().Before(b.openUntil) {
		return domain.ErrServiceUnavailable
	}
	return nil
}

// Record feeds a call outcome into the breaker.
func (b *Breaker) Record(err error) {
	if b == nil || b.threshold <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
		b.failures = 0
	}
}
