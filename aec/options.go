// SPDX-License-Identifier: EPL-2.0

package aec

import (
	"github.com/sirupsen/logrus"

	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/engine"
)

// EchoController is the echo cancellation engine a Session drives.
type EchoController interface {
	AnalyzeRender(render *audio.Buffer) error
	AnalyzeCapture(capture *audio.Buffer) error
	SetAudioBufferDelay(frames int)
	ProcessCapture(capture, linear *audio.Buffer, levelChange bool) error
	Metrics() engine.Metrics
}

// EchoControllerFactory builds the echo controller of a new Session.
type EchoControllerFactory func(cfg engine.Config, sampleRate, renderChannels, captureChannels int) (EchoController, error)

// PreFilter is the in-place filter applied to the split capture signal.
type PreFilter interface {
	Process(b *audio.Buffer, useSplitBand bool) error
}

// PreFilterFactory builds the pre-filter of a new Session.
type PreFilterFactory func(sampleRate, channels int) PreFilter

// Option configures a Session.
type Option func(*options)

type options struct {
	log           logrus.FieldLogger
	newController EchoControllerFactory
	newPreFilter  PreFilterFactory
}

// WithLogger sets the logger for the session and its engine. The default is
// the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithEchoControllerFactory replaces the built-in engine.
func WithEchoControllerFactory(f EchoControllerFactory) Option {
	return func(o *options) {
		o.newController = f
	}
}

// WithHighPassFactory replaces the built-in 80 Hz high-pass pre-filter.
func WithHighPassFactory(f PreFilterFactory) Option {
	return func(o *options) {
		o.newPreFilter = f
	}
}

func defaultOptions() options {
	o := options{log: logrus.StandardLogger()}
	o.newPreFilter = func(sampleRate, channels int) PreFilter {
		return audio.NewHighPassFilter(sampleRate, channels)
	}
	return o
}

// engineFactory returns the built-in engine factory, logging to l.
func engineFactory(l logrus.FieldLogger) EchoControllerFactory {
	return func(cfg engine.Config, sampleRate, renderChannels, captureChannels int) (EchoController, error) {
		ec, err := engine.New(cfg, sampleRate, renderChannels, captureChannels, engine.WithLogger(l))
		if err != nil {
			return nil, err
		}
		return ec, nil
	}
}
