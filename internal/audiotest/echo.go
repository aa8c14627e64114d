// SPDX-License-Identifier: EPL-2.0

package audiotest

import "math"

// EchoPath synthesizes paired 10 ms chunks of far-end (reference) and
// microphone (capture) PCM16 audio, where the capture is an attenuated copy
// of the reference delayed by a whole number of chunks, optionally mixed
// with a near-end tone.
type EchoPath struct {
	SampleRate  int
	Channels    int
	Frequency   float64 // far-end tone, Hz
	Amplitude   float64 // far-end peak, PCM16 units
	Attenuation float64 // echo gain applied to the delayed reference
	DelayChunks int

	NearEndFrequency float64
	NearEndAmplitude float64
}

// FramesPerChunk is the per-channel length of one chunk.
func (p EchoPath) FramesPerChunk() int { return p.SampleRate / 100 }

// Reference returns chunk index of the far-end signal.
func (p EchoPath) Reference(index int) []int16 {
	return p.render(index, func(t float64) float64 {
		return p.Amplitude * math.Sin(2*math.Pi*p.Frequency*t)
	})
}

// Capture returns chunk index of the microphone signal.
func (p EchoPath) Capture(index int) []int16 {
	lag := float64(p.DelayChunks*p.FramesPerChunk()) / float64(p.SampleRate)
	return p.render(index, func(t float64) float64 {
		v := p.Attenuation * p.Amplitude * math.Sin(2*math.Pi*p.Frequency*(t-lag))
		if p.NearEndAmplitude > 0 {
			v += p.NearEndAmplitude * math.Sin(2*math.Pi*p.NearEndFrequency*t)
		}
		return v
	})
}

func (p EchoPath) render(index int, wave func(t float64) float64) []int16 {
	n := p.FramesPerChunk()
	out := make([]int16, n*p.Channels)
	for i := range n {
		t := float64(index*n+i) / float64(p.SampleRate)
		v := int16(math.Round(math.Max(-32768, math.Min(32767, wave(t)))))
		for ch := range p.Channels {
			out[i*p.Channels+ch] = v
		}
	}
	return out
}
