// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/aecpbx/utils"
)

// Conform adapts src to the given rate and channel count, inserting a
// Resampler and a ChannelMapper only where needed.
func Conform(src Source, sampleRate, channels int) Source {
	out := src
	if out.SampleRate() != sampleRate {
		out = NewResampler(out, sampleRate)
	}
	if out.Channels() != channels {
		out = NewChannelMapper(out, channels)
	}
	return out
}

// FrameReader slices a Source into fixed-size PCM16 frames.
type FrameReader struct {
	src  Source
	tmp  []float32
	done bool
}

func NewFrameReader(src Source) *FrameReader {
	return &FrameReader{src: src}
}

// ReadFrame fills dst completely, zero-padding past the end of the stream.
// It returns the number of samples that came from the source, and io.EOF
// once the source has nothing left to give.
func (r *FrameReader) ReadFrame(dst []int16) (int, error) {
	if len(dst)%r.src.Channels() != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.done {
		return 0, io.EOF
	}
	if cap(r.tmp) < len(dst) {
		r.tmp = make([]float32, len(dst))
	}
	buf := r.tmp[:len(dst)]

	got := 0
	for got < len(buf) {
		n, err := r.src.ReadSamples(buf[got:])
		got += n
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		if err != nil {
			return got, fmt.Errorf("frame reader: %w", err)
		}
		if n == 0 {
			r.done = true
			break
		}
	}

	for i := range got {
		dst[i] = utils.Float32ToInt16(buf[i])
	}
	clear(dst[got:])

	if got == 0 {
		return 0, io.EOF
	}
	return got, nil
}
