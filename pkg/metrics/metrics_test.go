package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpMetrics(t *testing.T) {
	m := NewNoOpMetrics()
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.Counter("requests", 1, nil)
		m.Gauge("queue_depth", 3, map[string]string{"stage": "fetch"})
		m.Histogram("duration_ms", 12.5, nil)
		m.Timer("duration_ms", 12.5, nil)
	})
}

func TestRecordingMetrics(t *testing.T) {
	t.Run("counters accumulate", func(t *testing.T) {
		m := NewRecordingMetrics()
		m.Counter("chunks", 1, nil)
		m.Counter("chunks", 2, nil)
		assert.Equal(t, 3.0, m.CounterValue("chunks"))
	})

	t.Run("unknown counter reads zero", func(t *testing.T) {
		m := NewRecordingMetrics()
		assert.Equal(t, 0.0, m.CounterValue("never_recorded"))
	})

	t.Run("gauges keep the last value", func(t *testing.T) {
		m := NewRecordingMetrics()
		m.Gauge("depth", 5, nil)
		m.Gauge("depth", 2, nil)
		assert.Equal(t, 2.0, m.GaugeValue("depth"))
	})

	t.Run("histograms count observations", func(t *testing.T) {
		m := NewRecordingMetrics()
		m.Histogram("size", 10, nil)
		m.Histogram("size", 20, nil)
		m.Histogram("size", 30, nil)
		assert.Equal(t, 3, m.HistogramCount("size"))
		assert.Equal(t, 0, m.HistogramCount("other"))
	})

	t.Run("timers do not panic", func(t *testing.T) {
		m := NewRecordingMetrics()
		assert.NotPanics(t, func() {
			m.Timer("resolve_ms", 4.2, map[string]string{"source": "url"})
		})
	})
}

func TestRecordingMetricsConcurrentUse(t *testing.T) {
	m := NewRecordingMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Counter("parallel", 1, nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800.0, m.CounterValue("parallel"))
}
