// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	goaudio "github.com/go-audio/audio"
)

// MaxDataSamples is the staging capacity of a Frame in interleaved samples.
const MaxDataSamples = 7680

// Frame is a reusable staging area for interleaved PCM16 audio. It adapts
// caller-owned sample arrays into the layout a Buffer copies from and to.
//
// Storage beyond the active region always reads as zero.
type Frame struct {
	pcm               *goaudio.IntBuffer
	samplesPerChannel int
	active            int
	muted             bool
}

func NewFrame() *Frame {
	return &Frame{
		pcm: &goaudio.IntBuffer{
			Format:         &goaudio.Format{},
			Data:           make([]int, MaxDataSamples),
			SourceBitDepth: 16,
		},
		muted: true,
	}
}

// Update reformats the frame and copies samplesPerChannel*channels samples
// from data. A nil data slice leaves the frame muted (all zero).
func (f *Frame) Update(data []int16, samplesPerChannel, sampleRate, channels int) error {
	if samplesPerChannel < 0 || sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("frame %d Hz x %d: %w", sampleRate, channels, ErrInvalidStreamConfig)
	}

	n := samplesPerChannel * channels
	if n > MaxDataSamples {
		return fmt.Errorf("%d samples: %w", n, ErrFrameTooLarge)
	}
	if data != nil && len(data) < n {
		return fmt.Errorf("have %d, need %d: %w", len(data), n, ErrShortData)
	}

	f.pcm.Format.SampleRate = sampleRate
	f.pcm.Format.NumChannels = channels
	f.samplesPerChannel = samplesPerChannel
	f.muted = data == nil

	if f.muted {
		clear(f.pcm.Data[:n])
	} else {
		for i := range n {
			f.pcm.Data[i] = int(data[i])
		}
	}
	if n < f.active {
		clear(f.pcm.Data[n:f.active])
	}
	f.active = n

	return nil
}

func (f *Frame) SampleRate() int        { return f.pcm.Format.SampleRate }
func (f *Frame) Channels() int          { return f.pcm.Format.NumChannels }
func (f *Frame) SamplesPerChannel() int { return f.samplesPerChannel }
func (f *Frame) Muted() bool            { return f.muted }

// PCM exposes the active region as a go-audio buffer.
func (f *Frame) PCM() *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format:         f.pcm.Format,
		Data:           f.pcm.Data[:f.active],
		SourceBitDepth: f.pcm.SourceBitDepth,
	}
}

// CopySamples writes the first n staged samples into dst. n may extend past
// the active region, up to MaxDataSamples.
func (f *Frame) CopySamples(dst []int16, n int) error {
	if n > MaxDataSamples {
		return fmt.Errorf("%d samples: %w", n, ErrFrameTooLarge)
	}
	if len(dst) < n {
		return fmt.Errorf("have %d, need %d: %w", len(dst), n, ErrShortData)
	}
	for i := range n {
		dst[i] = int16(f.pcm.Data[i])
	}
	return nil
}

func (f *Frame) matches(cfg StreamConfig, frames int) bool {
	return f.SampleRate() == cfg.SampleRate &&
		f.Channels() == cfg.Channels &&
		f.samplesPerChannel == frames
}
