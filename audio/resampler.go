// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/aecpbx/utils"
)

// Resampler converts a Source to another sample rate with Catmull-Rom
// interpolation. Channel count is preserved. When downsampling, incoming
// frames pass through a one-pole low-pass before interpolation.
type Resampler struct {
	src      Source
	rate     int
	step     float64 // source frames consumed per output frame
	channels int

	// window holds four consecutive source frames around the read position:
	// t-1, t0, t+1, t+2. real marks which of them came from the source
	// rather than edge padding.
	window [4][]float32
	real   [4]bool
	primed bool
	phase  float64

	in      []float32
	lowPass []float32
	alpha   float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:      src,
		rate:     dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	if r.step > 1 {
		r.lowPass = make([]float32, channels)
		r.alpha = 0.5
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with interleaved samples at the target rate.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.src.SampleRate() == r.rate {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	n := 0
	for n < len(dst) {
		for r.phase >= 1 {
			r.phase--
			if err := r.advance(); err != nil {
				return n, err
			}
		}
		if !r.real[1] || !r.real[2] {
			return n, io.EOF
		}

		x := float32(r.phase)
		for c := range r.channels {
			dst[n+c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}
		n += r.channels
		r.phase += r.step
	}

	return n, nil
}

// prime loads the first frames so that position 0 sits on source frame 0.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.readFrame(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	r.real[1] = true
	if r.lowPass != nil {
		copy(r.lowPass, r.window[1])
	}
	copy(r.window[0], r.window[1])

	for i := 2; i < 4; i++ {
		ok, err := r.readFrame(r.window[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.window[i], r.window[i-1])
		}
		r.real[i] = ok
	}

	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	last := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.real[:3], r.real[1:])
	r.window[3] = last

	ok, err := r.readFrame(r.window[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.window[3], r.window[2])
	}
	r.real[3] = ok

	return nil
}

// readFrame reads one interleaved frame into dst, reporting false at end of
// stream.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	got := 0
	for got < r.channels {
		n, err := r.src.ReadSamples(r.in[got:])
		got += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}
	if got < r.channels {
		return false, nil
	}

	copy(dst, r.in)
	if r.lowPass != nil {
		for c := range r.channels {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.lowPass[c]
			r.lowPass[c] = dst[c]
		}
	}

	return true, nil
}
