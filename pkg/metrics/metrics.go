// Package metrics provides metrics implementations for DocChunk
package metrics

import (
	"sync"

	"github.com/docchunk/docchunk/pkg/interfaces"
)

// NoOpMetrics is a no-operation metrics implementation
type NoOpMetrics struct{}

// Counter increments a counter metric
func (m *NoOpMetrics) Counter(name string, value float64, labels map[string]string) {
	// No-op
}

// Gauge sets a gauge metric
func (m *NoOpMetrics) Gauge(name string, value float64, labels map[string]string) {
	// No-op
}

// Histogram records a histogram metric
func (m *NoOpMetrics) Histogram(name string, value float64, labels map[string]string) {
	// No-op
}

// Timer records timing metrics
func (m *NoOpMetrics) Timer(name string, duration float64, labels map[string]string) {
	// No-op
}

// RecordingMetrics keeps counters and last observed values in memory so
// callers can inspect what the pipeline reported
type RecordingMetrics struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
	timers     map[string][]float64
}

// Counter increments a counter metric
func (m *RecordingMetrics) Counter(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

// Gauge sets a gauge metric
func (m *RecordingMetrics) Gauge(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// Histogram records a histogram metric
func (m *RecordingMetrics) Histogram(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name] = append(m.histograms[name], value)
}

// Timer records timing metrics
func (m *RecordingMetrics) Timer(name string, duration float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers[name] = append(m.timers[name], duration)
}

// CounterValue returns the accumulated value of a counter
func (m *RecordingMetrics) CounterValue(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// GaugeValue returns the last recorded value of a gauge
func (m *RecordingMetrics) GaugeValue(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[name]
}

// HistogramCount returns how many observations a histogram has recorded
func (m *RecordingMetrics) HistogramCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.histograms[name])
}

var _ interfaces.Metrics = (*NoOpMetrics)(nil)
var _ interfaces.Metrics = (*RecordingMetrics)(nil)

// NewNoOpMetrics creates a new no-op metrics implementation
func NewNoOpMetrics() interfaces.Metrics {
	return &NoOpMetrics{}
}

// NewRecordingMetrics creates an in-memory recording metrics implementation
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
		timers:     make(map[string][]float64),
	}
}

// NewTestMetrics creates a metrics implementation for testing
func NewTestMetrics() *RecordingMetrics {
	return NewRecordingMetrics()
}
