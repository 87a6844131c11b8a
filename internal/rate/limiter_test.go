package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLimiter_Reserve(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(10)
	l.now = fixedClock(base)

	assert.Equal(t, 100*time.Millisecond, l.Interval())
	assert.Equal(t, base, l.Reserve())
	assert.Equal(t, base.Add(100*time.Millisecond), l.Reserve())
	assert.Equal(t, base.Add(200*time.Millisecond), l.Reserve())
}

func TestLimiter_NoBurstAfterIdle(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(10)
	l.now = fixedClock(base)
	l.Reserve()

	later := base.Add(5 * time.Second)
	l.now = fixedClock(later)
	assert.Equal(t, later, l.Reserve())
	assert.Equal(t, later.Add(100*time.Millisecond), l.Reserve())
}

func TestLimiter_Unpaced(t *testing.T) {
	for _, r := range []float64{0, -3} {
		l := NewLimiter(r)
		assert.Zero(t, l.Interval())
		first := l.Reserve()
		assert.WithinDuration(t, first, l.Reserve(), 10*time.Millisecond)
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewLimiter(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiter_ConcurrentReservationsAreDistinct(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter(100)
	l.now = fixedClock(base)

	var mu sync.Mutex
	seen := make(map[time.Time]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot := l.Reserve()
			mu.Lock()
			seen[slot] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
