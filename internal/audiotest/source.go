// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Waveform returns the sample of channel ch at frame index i.
type Waveform func(i, ch int) float32

// MockSource is a finite, synthetic stream of interleaved float32 samples.
// It satisfies audio.Source structurally, so the audio package can use it
// from its own tests.
type MockSource struct {
	rate   int
	chans  int
	frames int
	pos    int
	wave   Waveform
	closed bool
}

// NewMockSource returns a source of frames frames per channel drawn from
// wave.
func NewMockSource(sampleRate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{rate: sampleRate, chans: channels, frames: frames, wave: wave}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewSineSource is a full-scale sine on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewDelayedSineSource(sampleRate, channels, frames, frequency, 1, 0)
}

// NewDelayedSineSource is a sine of the given amplitude (0..1) lagging by
// delay frames.
func NewDelayedSineSource(sampleRate, channels, frames int, frequency, amplitude float64, delay int) *MockSource {
	w := 2 * math.Pi * frequency / float64(sampleRate)
	return NewMockSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return float32(amplitude * math.Sin(w*float64(i-delay)))
	})
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.chans }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the stream to its first frame.
func (m *MockSource) Reset() { m.pos = 0 }

// ReadSamples fills whole frames only. The read that reaches the end
// returns io.EOF together with its samples.
func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.chans, m.frames-m.pos)
	for f := range n {
		for ch := range m.chans {
			dst[f*m.chans+ch] = m.wave(m.pos+f, ch)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.chans, io.EOF
	}
	return n * m.chans, nil
}
