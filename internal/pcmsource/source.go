// SPDX-License-Identifier: EPL-2.0

// Package pcmsource adapts go-audio PCM decoders to audio.Source.
package pcmsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/aecpbx/audio"
)

// ErrUnsupportedBitDepth is returned for sample widths other than 16, 24 or 32 bits.
var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// ErrInvalidFormat is returned when the decoder reports no usable format.
var ErrInvalidFormat = errors.New("invalid PCM format")

// Reader is the part of go-audio's wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

const defaultBufSize = 4096

// Source streams a Reader as normalized float32 samples.
type Source struct {
	dec        Reader
	format     *goaudio.Format
	scale      float32
	sampleRate int
	channels   int
	intBuf     *goaudio.IntBuffer
	done       bool
}

// New wraps dec. bitDepth is the width of the stored samples.
func New(dec Reader, bitDepth int) (*Source, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, ErrInvalidFormat
	}

	return &Source{
		dec:        dec,
		format:     format,
		scale:      float32(goaudio.IntMaxSignedValue(bitDepth) + 1),
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
	}, nil
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return defaultBufSize
}

// ReadSamples fills dst and reports io.EOF together with the final short read.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.format,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		s.done = true
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) / s.scale
	}

	if n < len(dst) {
		s.done = true
		return n, io.EOF
	}
	return n, nil
}

// ReadSeeker returns r as an io.ReadSeeker, buffering it in memory when needed.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

var _ audio.Source = (*Source)(nil)
