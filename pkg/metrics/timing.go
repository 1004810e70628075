// Package metrics records timings for the galaxy hot paths: simulation ticks,
// graph builds, frame renders, dataset loads and snapshot exports.
//
// Samples are kept in memory with atomics so concurrent sessions of a batch
// export can share the counters. Collection is on unless FG_METRICS=0.
//
//	func (s *Simulation) Step(...) bool {
//	    defer metrics.Timer(metrics.Tick)()
//	    ...
//	}
package metrics

import (
	"math"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("FG_METRICS") != "0")
}

// Enabled reports whether samples are recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric aggregates the durations of one operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	min   atomic.Int64
	max   atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	m := &TimingMetric{name: name}
	m.min.Store(math.MaxInt64)
	return m
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := int64(d)
	m.count.Add(1)
	m.total.Add(ns)
	keep(&m.min, ns, func(cur, v int64) bool { return v < cur })
	keep(&m.max, ns, func(cur, v int64) bool { return v > cur })
}

// keep stores v into a while better(current, v) holds.
func keep(a *atomic.Int64, v int64, better func(cur, v int64) bool) {
	for {
		cur := a.Load()
		if !better(cur, v) || a.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats summarises the samples in milliseconds. The fields are read one by
// one, so a concurrent Record may be half visible.
func (m *TimingMetric) Stats() TimingStats {
	n := m.count.Load()
	st := TimingStats{Name: m.name, Count: n}
	if n == 0 {
		return st
	}
	total := m.total.Load()
	st.TotalMs = ms(total)
	st.AvgMs = ms(total / n)
	st.MinMs = ms(m.min.Load())
	st.MaxMs = ms(m.max.Load())
	return st
}

func ms(ns int64) float64 { return float64(ns) / float64(time.Millisecond) }

// Reset drops all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.min.Store(math.MaxInt64)
	m.max.Store(0)
}

// TimingStats is a snapshot of one metric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MinMs   float64 `json:"min_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// Timer starts timing m; call the result to record the sample.
func Timer(m *TimingMetric) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

var (
	Tick        = newTimingMetric("simulation_tick")
	Build       = newTimingMetric("graph_build")
	Render      = newTimingMetric("frame_render")
	DatasetLoad = newTimingMetric("dataset_load")
	Snapshot    = newTimingMetric("snapshot_export")

	registry = []*TimingMetric{Tick, Build, Render, DatasetLoad, Snapshot}
)

// AllTimingMetrics returns the metrics the galaxy code records into.
func AllTimingMetrics() []*TimingMetric {
	return append([]*TimingMetric(nil), registry...)
}

// ResetAll resets every registered metric.
func ResetAll() {
	for _, m := range registry {
		m.Reset()
	}
}

// AllTimingStats returns stats for the registered metrics that have samples.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	for _, m := range registry {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
