package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling average of frame times and the duration of every
// profiling sample recorded during the last frame.
type Metrics struct {
	mu sync.Mutex

	frameAVGCounter uint8
	msTimes         [AVG_COUNT]float64
	msAvg           float64
	frames          int32
	accumulatedMS   float64
	fps             float64
	totalFrames     uint64

	samples map[string]time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		samples: make(map[string]time.Duration),
	}
}

// Update records the duration of a completed frame.
func (m *Metrics) Update(frameElapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Calculate frame ms average
	frameMS := float64(frameElapsed) / float64(time.Millisecond)
	m.msTimes[m.frameAVGCounter] = frameMS
	if m.frameAVGCounter == AVG_COUNT-1 {
		m.msAvg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.msAvg += m.msTimes[i]
		}
		m.msAvg /= float64(AVG_COUNT)
	}
	m.frameAVGCounter++
	m.frameAVGCounter %= AVG_COUNT

	// Calculate frames per second.
	m.accumulatedMS += frameMS
	if m.accumulatedMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedMS -= 1000
		m.frames = 0
	}

	m.frames++
	m.totalFrames++
}

// RecordSample stores the duration of a named profiling sample. Samples with
// the same tag within a frame accumulate.
func (m *Metrics) RecordSample(tag string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[tag] += d
}

// Sample returns the accumulated duration for tag.
func (m *Metrics) Sample(tag string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.samples[tag]
	return d, ok
}

// ResetSamples clears the per-frame samples.
func (m *Metrics) ResetSamples() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.samples)
}

func (m *Metrics) FPS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msAvg
}

func (m *Metrics) TotalFrames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalFrames
}
