// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

const (
	highPassCutoffHz = 80.0
	highPassQ        = 0.7071
)

type biquadCoeffs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquadState is a transposed direct form II delay line.
type biquadState struct {
	z1, z2 float64
}

// HighPassFilter removes DC and low-frequency rumble from capture audio with
// a second-order 80 Hz high-pass section per channel.
type HighPassFilter struct {
	sampleRate int
	channels   int
	coeffs     map[int]biquadCoeffs
	state      []biquadState
}

func NewHighPassFilter(sampleRate, channels int) *HighPassFilter {
	return &HighPassFilter{
		sampleRate: sampleRate,
		channels:   channels,
		coeffs:     make(map[int]biquadCoeffs, 2),
		state:      make([]biquadState, channels),
	}
}

// Process filters b in place. With useSplitBand the lowest split band is
// filtered at its own rate, otherwise the full band is.
func (h *HighPassFilter) Process(b *Buffer, useSplitBand bool) error {
	if b.NumChannels() != h.channels {
		return fmt.Errorf("filter has %d channels, buffer %d: %w",
			h.channels, b.NumChannels(), ErrChannelMismatch)
	}

	rate := b.SampleRate()
	if useSplitBand {
		rate = b.BandRate()
	}
	c := h.coefficients(rate)

	for ch := range h.channels {
		x := b.Channel(ch)
		if useSplitBand {
			x = b.Band(ch, 0)
		}
		s := &h.state[ch]
		for i, v := range x {
			in := float64(v)
			out := c.b0*in + s.z1
			s.z1 = c.b1*in - c.a1*out + s.z2
			s.z2 = c.b2*in - c.a2*out
			x[i] = float32(out)
		}
	}

	return nil
}

// Reset clears the filter history.
func (h *HighPassFilter) Reset() {
	clear(h.state)
}

func (h *HighPassFilter) coefficients(rate int) biquadCoeffs {
	if c, ok := h.coeffs[rate]; ok {
		return c
	}

	w0 := 2 * math.Pi * highPassCutoffHz / float64(rate)
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * highPassQ)
	a0 := 1 + alpha

	c := biquadCoeffs{
		b0: (1 + cosW) / 2 / a0,
		b1: -(1 + cosW) / a0,
		b2: (1 + cosW) / 2 / a0,
		a1: -2 * cosW / a0,
		a2: (1 - alpha) / a0,
	}
	h.coeffs[rate] = c

	return c
}
