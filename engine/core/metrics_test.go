package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Samples(t *testing.T) {
	m := NewMetrics()

	m.RecordSample("SSBlur-Pass", 2*time.Millisecond)
	m.RecordSample("SSBlur-Pass", 3*time.Millisecond)

	d, ok := m.Sample("SSBlur-Pass")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, d)

	m.ResetSamples()
	_, ok = m.Sample("SSBlur-Pass")
	assert.False(t, ok)
}

func TestMetrics_FrameAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(10 * time.Millisecond)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 0.001)
	assert.Equal(t, uint64(AVG_COUNT), m.TotalFrames())
}
