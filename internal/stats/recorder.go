// Package stats aggregates the outcome of repeated executions of one
// request: latency percentiles from an HDR histogram plus status code and
// failure counts.
//
// Recorder is safe for concurrent use. Counters are atomic and the
// histogram is guarded by a mutex.
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Config bounds the latency histogram. Values are in microseconds.
type Config struct {
	HistogramMin     int64
	HistogramMax     int64
	HistogramSigFigs int
}

// DefaultConfig records 1µs to 1h with 3 significant figures.
func DefaultConfig() Config {
	return Config{
		HistogramMin:     1,
		HistogramMax:     3600000000,
		HistogramSigFigs: 3,
	}
}

// Recorder collects samples.
type Recorder struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	statusMu sync.Mutex
	statuses map[int]int64

	total   atomic.Int64
	failed  atomic.Int64
	bytes   atomic.Int64
	started time.Time

	config Config
}

// NewRecorder creates a recorder with DefaultConfig.
func NewRecorder() *Recorder {
	return NewRecorderWithConfig(DefaultConfig())
}

// NewRecorderWithConfig creates a recorder with a custom histogram range.
func NewRecorderWithConfig(config Config) *Recorder {
	return &Recorder{
		hist:     hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		statuses: make(map[int]int64),
		started:  time.Now(),
		config:   config,
	}
}

// Sample is the outcome of one execution.
type Sample struct {
	Duration   time.Duration
	StatusCode int
	Bytes      int64
	// Failed marks transport, decode or validation failures.
	Failed bool
}

// Record adds a sample. Latencies outside the histogram range are clamped.
func (r *Recorder) Record(s Sample) {
	micros := s.Duration.Microseconds()
	if micros < r.config.HistogramMin {
		micros = r.config.HistogramMin
	}
	if micros > r.config.HistogramMax {
		micros = r.config.HistogramMax
	}

	r.histMu.Lock()
	_ = r.hist.RecordValue(micros)
	r.histMu.Unlock()

	r.statusMu.Lock()
	r.statuses[s.StatusCode]++
	r.statusMu.Unlock()

	r.total.Add(1)
	r.bytes.Add(s.Bytes)
	if s.Failed {
		r.failed.Add(1)
	}
}

// LatencyStats summarises the latency distribution.
type LatencyStats struct {
	Min    time.Duration `json:"min" yaml:"min"`
	Max    time.Duration `json:"max" yaml:"max"`
	Mean   time.Duration `json:"mean" yaml:"mean"`
	StdDev time.Duration `json:"stdDev" yaml:"stdDev"`
	P50    time.Duration `json:"p50" yaml:"p50"`
	P90    time.Duration `json:"p90" yaml:"p90"`
	P95    time.Duration `json:"p95" yaml:"p95"`
	P99    time.Duration `json:"p99" yaml:"p99"`
}

// Summary is a point-in-time view of everything recorded so far.
type Summary struct {
	Requests    int64         `json:"requests" yaml:"requests"`
	Failed      int64         `json:"failed" yaml:"failed"`
	Bytes       int64         `json:"bytes" yaml:"bytes"`
	ErrorRate   float64       `json:"errorRate" yaml:"errorRate"`
	RPS         float64       `json:"rps" yaml:"rps"`
	Elapsed     time.Duration `json:"elapsed" yaml:"elapsed"`
	Latency     LatencyStats  `json:"latency" yaml:"latency"`
	StatusCodes map[int]int64 `json:"statusCodes" yaml:"statusCodes"`
}

// Summary computes the current summary.
func (r *Recorder) Summary() Summary {
	r.histMu.Lock()
	latency := LatencyStats{
		Min:    micros(r.hist.Min()),
		Max:    micros(r.hist.Max()),
		Mean:   micros(int64(r.hist.Mean())),
		StdDev: micros(int64(r.hist.StdDev())),
		P50:    micros(r.hist.ValueAtQuantile(50)),
		P90:    micros(r.hist.ValueAtQuantile(90)),
		P95:    micros(r.hist.ValueAtQuantile(95)),
		P99:    micros(r.hist.ValueAtQuantile(99)),
	}
	r.histMu.Unlock()

	r.statusMu.Lock()
	statuses := make(map[int]int64, len(r.statuses))
	for code, n := range r.statuses {
		statuses[code] = n
	}
	r.statusMu.Unlock()

	total := r.total.Load()
	failed := r.failed.Load()
	elapsed := time.Since(r.started)

	s := Summary{
		Requests:    total,
		Failed:      failed,
		Bytes:       r.bytes.Load(),
		Elapsed:     elapsed,
		Latency:     latency,
		StatusCodes: statuses,
	}
	if total > 0 {
		s.ErrorRate = float64(failed) / float64(total)
	}
	if elapsed > 0 {
		s.RPS = float64(total) / elapsed.Seconds()
	}
	return s
}

// Reset clears all samples and restarts the clock.
func (r *Recorder) Reset() {
	r.histMu.Lock()
	r.hist.Reset()
	r.histMu.Unlock()

	r.statusMu.Lock()
	r.statuses = make(map[int]int64)
	r.statusMu.Unlock()

	r.total.Store(0)
	r.failed.Store(0)
	r.bytes.Store(0)
	r.started = time.Now()
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
