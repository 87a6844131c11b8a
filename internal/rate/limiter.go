// Package rate paces repeated request executions.
package rate

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out start times spaced 1/rate apart. When callers fall
// behind schedule the next start is immediate, but idle time never
// accumulates into a burst of more than one execution.
//
// A Limiter is safe for concurrent use.
type Limiter struct {
	limiter  *rate.Limiter
	interval time.Duration
	now      func() time.Time
}

// NewLimiter returns a limiter allowing perSecond executions per second.
// A non-positive rate disables pacing.
func NewLimiter(perSecond float64) *Limiter {
	l := &Limiter{
		limiter: rate.NewLimiter(rate.Inf, 1),
		now:     time.Now,
	}
	if perSecond > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		l.interval = time.Duration(float64(time.Second) / perSecond)
	}
	return l
}

// Interval is the spacing between two starts; zero when unpaced.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Reserve returns when the next execution may start and books that slot.
func (l *Limiter) Reserve() time.Time {
	now := l.now()
	return now.Add(l.limiter.ReserveN(now, 1).DelayFrom(now))
}

// Wait blocks until the next slot or until ctx is done. A cancelled wait
// gives its slot back.
func (l *Limiter) Wait(ctx context.Context) error {
	now := l.now()
	r := l.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
