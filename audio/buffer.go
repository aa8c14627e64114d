// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/aecpbx/utils"
)

// Buffer holds one 10 ms chunk of deinterleaved audio in the PCM16 value
// range, either as a single full band or split into 16 kHz sub-bands.
type Buffer struct {
	cfg        StreamConfig
	frames     int
	numBands   int
	bandFrames int

	data  [][]float32   // [channel][frame]
	bands [][][]float32 // [channel][band][frame]
	split bool

	// basis[b][j] is the orthonormal DCT-II weight of sample j for band b.
	basis [][]float64
}

// NewBuffer allocates a Buffer. The three stream descriptions mirror the
// input, processing and output sides of a capture path; they must be equal.
func NewBuffer(input, processing, output StreamConfig) (*Buffer, error) {
	if !input.valid() || !processing.valid() || !output.valid() {
		return nil, ErrInvalidStreamConfig
	}
	if input != processing || processing != output {
		return nil, ErrResamplingNotAllowed
	}

	numBands, err := NumBands(processing.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%d Hz: %w", processing.SampleRate, err)
	}

	frames := processing.FramesPerChunk()
	b := &Buffer{
		cfg:        processing,
		frames:     frames,
		numBands:   numBands,
		bandFrames: frames / numBands,
		data:       make([][]float32, processing.Channels),
		bands:      make([][][]float32, processing.Channels),
		basis:      bandBasis(numBands),
	}
	for ch := range processing.Channels {
		b.data[ch] = make([]float32, frames)
		b.bands[ch] = make([][]float32, numBands)
		for band := range numBands {
			b.bands[ch][band] = make([]float32, b.bandFrames)
		}
	}

	return b, nil
}

func (b *Buffer) SampleRate() int    { return b.cfg.SampleRate }
func (b *Buffer) NumChannels() int   { return b.cfg.Channels }
func (b *Buffer) NumFrames() int     { return b.frames }
func (b *Buffer) NumBands() int      { return b.numBands }
func (b *Buffer) FramesPerBand() int { return b.bandFrames }
func (b *Buffer) IsSplit() bool      { return b.split }

// BandRate returns the sample rate of a single band.
func (b *Buffer) BandRate() int { return b.cfg.SampleRate / b.numBands }

// Channel returns the full-band samples of channel ch.
func (b *Buffer) Channel(ch int) []float32 { return b.data[ch] }

// Band returns band of channel ch. For a single-band buffer band 0 is the
// full-band channel; otherwise bands are valid between a split and a merge.
func (b *Buffer) Band(ch, band int) []float32 {
	if b.numBands == 1 {
		return b.data[ch]
	}
	return b.bands[ch][band]
}

// CopyFrom deinterleaves f into the buffer and leaves it unsplit.
func (b *Buffer) CopyFrom(f *Frame) error {
	if !f.matches(b.cfg, b.frames) {
		return fmt.Errorf("frame %d Hz x %d x %d: %w",
			f.SampleRate(), f.Channels(), f.SamplesPerChannel(), ErrFrameMismatch)
	}

	channels := b.cfg.Channels
	src := f.pcm.Data
	for ch := range channels {
		dst := b.data[ch]
		for i := range b.frames {
			dst[i] = float32(src[i*channels+ch])
		}
	}
	b.split = false

	return nil
}

// CopyTo interleaves the full-band samples into f, rounding and saturating
// to PCM16.
func (b *Buffer) CopyTo(f *Frame) error {
	if !f.matches(b.cfg, b.frames) {
		return fmt.Errorf("frame %d Hz x %d x %d: %w",
			f.SampleRate(), f.Channels(), f.SamplesPerChannel(), ErrFrameMismatch)
	}

	channels := b.cfg.Channels
	dst := f.pcm.Data
	for ch := range channels {
		src := b.data[ch]
		for i := range b.frames {
			dst[i*channels+ch] = int(utils.FloatS16ToInt16(src[i]))
		}
	}
	f.muted = false

	return nil
}

// SplitIntoFrequencyBands decomposes every channel into NumBands critically
// sampled sub-bands. Band 0 is the block mean, i.e. the signal decimated to
// 16 kHz in the same value range as the full band.
func (b *Buffer) SplitIntoFrequencyBands() {
	b.split = true
	if b.numBands == 1 {
		return
	}

	d := b.numBands
	scale := 1 / math.Sqrt(float64(d))
	for ch := range b.cfg.Channels {
		x := b.data[ch]
		for k := range b.bandFrames {
			block := x[k*d : k*d+d]
			for band := range d {
				var acc float64
				for j, v := range block {
					acc += b.basis[band][j] * float64(v)
				}
				b.bands[ch][band][k] = float32(acc * scale)
			}
		}
	}
}

// MergeFrequencyBands reconstructs the full band from the sub-bands. An
// unmodified split/merge round trip is lossless to within float rounding.
func (b *Buffer) MergeFrequencyBands() {
	if !b.split {
		return
	}
	b.split = false
	if b.numBands == 1 {
		return
	}

	d := b.numBands
	scale := math.Sqrt(float64(d))
	for ch := range b.cfg.Channels {
		x := b.data[ch]
		for k := range b.bandFrames {
			for j := range d {
				var acc float64
				for band := range d {
					acc += b.basis[band][j] * float64(b.bands[ch][band][k])
				}
				x[k*d+j] = float32(acc * scale)
			}
		}
	}
}

func bandBasis(d int) [][]float64 {
	basis := make([][]float64, d)
	for band := range d {
		basis[band] = make([]float64, d)
		s := math.Sqrt(2 / float64(d))
		if band == 0 {
			s = math.Sqrt(1 / float64(d))
		}
		for j := range d {
			basis[band][j] = s * math.Cos(math.Pi*(float64(j)+0.5)*float64(band)/float64(d))
		}
	}
	return basis
}
