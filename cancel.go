// SPDX-License-Identifier: EPL-2.0

package aecpbx

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/aecpbx/aec"
	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/engine"
)

var (
	ErrNilSource = errors.New("nil audio source")
	// ErrLinearChannels is returned when linear output is requested for more
	// channels than one linear frame can hold.
	ErrLinearChannels = errors.New("linear output supports at most 2 channels")
)

// Result is a fully processed capture stream.
type Result struct {
	SampleRate int
	Channels   int

	// Output is the echo-cancelled capture, interleaved, as long as the
	// capture stream after conversion to SampleRate/Channels.
	Output []int16
	// Linear is the adaptive filter output before suppression, at
	// aec.LinearOutputRate. Nil unless the config exported it.
	Linear []int16

	Frames  uint64
	Metrics engine.Metrics
}

// CancelEcho runs capture through a single session, using reference as the
// far-end signal, until capture is exhausted. Both streams are converted to
// the session's rate and channel count first; a reference shorter than the
// capture is padded with silence. delayFrames is the render to capture delay
// in 10 ms frames.
//
// The caller keeps ownership of both sources.
func CancelEcho(reference, capture audio.Source, cfg aec.Config, delayFrames int, opts ...aec.Option) (*Result, error) {
	if reference == nil || capture == nil {
		return nil, ErrNilSource
	}
	if cfg.ExportLinear && cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: got %d", ErrLinearChannels, cfg.Channels)
	}

	sess, err := aec.New(&cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	frameLen := cfg.FrameLength()
	size := frameLen * cfg.Channels

	ref := audio.NewFrameReader(audio.Conform(reference, cfg.SampleRate, cfg.Channels))
	mic := audio.NewFrameReader(audio.Conform(capture, cfg.SampleRate, cfg.Channels))

	refBuf := make([]int16, size)
	micBuf := make([]int16, size)
	outBuf := make([]int16, size)

	var linBuf []int16
	if cfg.ExportLinear {
		linBuf = make([]int16, aec.LinearOutputSamples)
	}

	res := &Result{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		Output:     make([]int16, 0, size*audio.ChunksPerSecond),
	}

	refDone := false
	for {
		got, err := mic.ReadFrame(micBuf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading capture: %w", err)
		}

		if !refDone {
			_, err := ref.ReadFrame(refBuf)
			switch {
			case errors.Is(err, io.EOF):
				refDone = true
				clear(refBuf)
			case err != nil:
				return nil, fmt.Errorf("reading reference: %w", err)
			}
		}

		if err := sess.Process(refBuf, micBuf, outBuf, linBuf, frameLen, delayFrames); err != nil {
			return nil, err
		}

		res.Output = append(res.Output, outBuf[:got]...)
		if linBuf != nil {
			res.Linear = append(res.Linear, linBuf[:linearSamples(got, cfg)]...)
		}
	}

	res.Frames = sess.Frames()
	res.Metrics = sess.Metrics()
	return res, nil
}

// linearSamples is how much of one linear frame corresponds to got capture
// samples.
func linearSamples(got int, cfg aec.Config) int {
	frames := got / cfg.Channels * aec.LinearOutputRate / cfg.SampleRate
	return frames * cfg.Channels
}
