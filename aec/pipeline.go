// SPDX-License-Identifier: EPL-2.0

package aec

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ik5/aecpbx/audio"
)

// frameCall carries the arguments of one Process call through the stages.
type frameCall struct {
	reference    []int16
	capture      []int16
	output       []int16
	linearOutput []int16
	frameLength  int
	bufferDelay  int
}

type stage struct {
	name string
	run  func(s *Session, c *frameCall) error
}

// pipeline lists the per-frame stages in execution order.
func pipeline() []stage {
	return []stage{
		{"ingest-reference", ingestReference},
		{"ingest-capture", ingestCapture},
		{"analyze-render", analyzeRender},
		{"analyze-capture", analyzeCapture},
		{"split-and-filter-capture", splitAndFilterCapture},
		{"set-delay", setDelay},
		{"process-capture", processCapture},
		{"merge-capture", mergeCapture},
		{"emit-output", emitOutput},
		{"emit-linear", emitLinear},
	}
}

// Process cancels the echo of reference in capture and writes the result to
// output. All three arrays hold frameLength samples per channel,
// interleaved; frameLength must be one 10 ms chunk at the session rate.
//
// When the session exports linear output and linearOutput is non-nil, the
// first LinearOutputSamples samples of the 16 kHz linear filter output are
// written to it. Otherwise linearOutput is left untouched.
//
// bufferDelay is the render-to-capture delay in frames. It is passed to the
// engine on every call.
//
// Arguments are validated before anything is touched: a failed call leaves
// the session and every array unchanged.
func (s *Session) Process(reference, capture, output, linearOutput []int16, frameLength, bufferDelay int) error {
	if s == nil {
		return ErrNilSession
	}
	if s.closed {
		return ErrClosed
	}
	if reference == nil || capture == nil || output == nil {
		return ErrNilFrame
	}
	if want := s.cfg.FrameLength(); frameLength != want {
		return fmt.Errorf("got %d, want %d: %w", frameLength, want, ErrFrameLength)
	}
	n := frameLength * s.cfg.Channels
	if len(reference) < n || len(capture) < n || len(output) < n {
		return fmt.Errorf("reference %d, capture %d, output %d, need %d: %w",
			len(reference), len(capture), len(output), n, ErrShortFrame)
	}
	if s.linear != nil && linearOutput != nil && len(linearOutput) < LinearOutputSamples {
		return fmt.Errorf("got %d: %w", len(linearOutput), ErrShortLinearFrame)
	}

	call := frameCall{
		reference:    reference,
		capture:      capture,
		output:       output,
		linearOutput: linearOutput,
		frameLength:  frameLength,
		bufferDelay:  bufferDelay,
	}
	for _, st := range s.stages {
		if err := st.run(s, &call); err != nil {
			s.log.WithFields(logrus.Fields{
				"function": "Session.Process",
				"stage":    st.name,
				"frame":    s.frames,
				"error":    err.Error(),
			}).Error("Frame processing stage failed")
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	s.frames++

	if debugEnabled(s.log) {
		s.log.WithFields(logrus.Fields{
			"function":     "Session.Process",
			"frame":        s.frames,
			"buffer_delay": bufferDelay,
		}).Debug("Frame processed")
	}

	return nil
}

func ingestReference(s *Session, c *frameCall) error {
	if err := s.referenceFrame.Update(c.reference, c.frameLength, s.cfg.SampleRate, s.cfg.Channels); err != nil {
		return err
	}
	return s.reference.CopyFrom(s.referenceFrame)
}

func ingestCapture(s *Session, c *frameCall) error {
	if err := s.captureFrame.Update(c.capture, c.frameLength, s.cfg.SampleRate, s.cfg.Channels); err != nil {
		return err
	}
	return s.capture.CopyFrom(s.captureFrame)
}

// analyzeRender hands the engine the split reference, then restores it.
func analyzeRender(s *Session, _ *frameCall) error {
	s.reference.SplitIntoFrequencyBands()
	if err := s.controller.AnalyzeRender(s.reference); err != nil {
		return err
	}
	s.reference.MergeFrequencyBands()
	return nil
}

// analyzeCapture runs on the unfiltered, unsplit capture.
func analyzeCapture(s *Session, _ *frameCall) error {
	return s.controller.AnalyzeCapture(s.capture)
}

func splitAndFilterCapture(s *Session, _ *frameCall) error {
	s.capture.SplitIntoFrequencyBands()
	return s.preFilter.Process(s.capture, true)
}

func setDelay(s *Session, c *frameCall) error {
	s.controller.SetAudioBufferDelay(c.bufferDelay)
	return nil
}

func processCapture(s *Session, _ *frameCall) error {
	return s.controller.ProcessCapture(s.capture, s.linear, false)
}

func mergeCapture(s *Session, _ *frameCall) error {
	s.capture.MergeFrequencyBands()
	return nil
}

func emitOutput(s *Session, c *frameCall) error {
	if err := s.capture.CopyTo(s.captureFrame); err != nil {
		return err
	}
	return s.captureFrame.CopySamples(c.output, c.frameLength*s.cfg.Channels)
}

// emitLinear restages the capture frame at the linear rate and copies a
// fixed LinearOutputSamples span out of it. For mono the span runs past the
// 160 staged samples and the tail reads as zeros.
func emitLinear(s *Session, c *frameCall) error {
	if s.linear == nil || c.linearOutput == nil {
		return nil
	}
	frames := LinearOutputRate / audio.ChunksPerSecond
	if err := s.captureFrame.Update(nil, frames, LinearOutputRate, s.cfg.Channels); err != nil {
		return err
	}
	if err := s.linear.CopyTo(s.captureFrame); err != nil {
		return err
	}
	return s.captureFrame.CopySamples(c.linearOutput, LinearOutputSamples)
}

func debugEnabled(l logrus.FieldLogger) bool {
	switch v := l.(type) {
	case *logrus.Logger:
		return v.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return v.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return true
}
