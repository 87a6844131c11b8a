package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Summary(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.Record(Sample{Duration: time.Duration(i) * time.Millisecond, StatusCode: 200, Bytes: 10})
	}
	r.Record(Sample{StatusCode: 0, Failed: true})

	s := r.Summary()
	assert.Equal(t, int64(101), s.Requests)
	assert.Equal(t, int64(1), s.Failed)
	assert.Equal(t, int64(1000), s.Bytes)
	assert.InDelta(t, 1.0/101.0, s.ErrorRate, 1e-9)
	assert.Equal(t, map[int]int64{200: 100, 0: 1}, s.StatusCodes)

	// 3 significant figures keep percentiles within 0.1%
	assert.Equal(t, time.Microsecond, s.Latency.Min, "zero durations clamp to the histogram minimum")
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Latency.Max), float64(100*time.Microsecond))
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.Latency.P50), float64(100*time.Microsecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.Latency.P99), float64(100*time.Microsecond))
	assert.True(t, s.Latency.P90 <= s.Latency.P95)
}

func TestRecorder_ClampsAboveMax(t *testing.T) {
	r := NewRecorderWithConfig(Config{HistogramMin: 1, HistogramMax: 1000, HistogramSigFigs: 2})
	r.Record(Sample{Duration: time.Hour, StatusCode: 504})

	s := r.Summary()
	require.Equal(t, int64(1), s.Requests)
	assert.InDelta(t, float64(time.Millisecond), float64(s.Latency.Max), float64(20*time.Microsecond))
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r.Record(Sample{Duration: time.Millisecond, StatusCode: 200})
			}
		}()
	}
	wg.Wait()

	s := r.Summary()
	assert.Equal(t, int64(400), s.Requests)
	assert.Equal(t, int64(400), s.StatusCodes[200])
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()
	r.Record(Sample{Duration: time.Millisecond, StatusCode: 200, Failed: true})
	r.Reset()

	s := r.Summary()
	assert.Zero(t, s.Requests)
	assert.Zero(t, s.Failed)
	assert.Zero(t, s.ErrorRate)
	assert.Empty(t, s.StatusCodes)
}
