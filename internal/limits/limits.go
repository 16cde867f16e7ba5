package limits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the per-minute budget is exhausted.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter bounds how many invocations run at once and how many start per minute.
// A nil *Limiter allows everything.
type Limiter struct {
	maxConcurrent int
	ratePerMinute int
	sem           *semaphore.Weighted
	limiter       *rate.Limiter
}

// New creates a limiter. Zero disables the corresponding limit; when both are
// zero New returns nil.
func New(maxConcurrent, ratePerMinute int) *Limiter {
	if maxConcurrent <= 0 && ratePerMinute <= 0 {
		return nil
	}
	l := &Limiter{maxConcurrent: maxConcurrent, ratePerMinute: ratePerMinute}
	if maxConcurrent > 0 {
		l.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	if ratePerMinute > 0 {
		l.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), ratePerMinute)
	}
	return l
}

// Acquire reserves a slot. The rate budget is checked first and never waits;
// the concurrency slot waits until one frees up or ctx ends.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if l.limiter != nil && !l.limiter.Allow() {
		return nil, fmt.Errorf("%w (%d per minute)", ErrRateLimited, l.ratePerMinute)
	}
	if l.sem == nil {
		return func() {}, nil
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for free slot: %w", err)
	}
	var once sync.Once
	return func() { once.Do(func() { l.sem.Release(1) }) }, nil
}
