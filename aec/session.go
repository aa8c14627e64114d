// SPDX-License-Identifier: EPL-2.0

package aec

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/engine"
	"github.com/ik5/aecpbx/tuning"
)

// Session is one echo cancellation stream. Create it with New, feed it with
// Process and release it with Close.
type Session struct {
	cfg     Config
	profile tuning.Profile
	log     logrus.FieldLogger

	controller EchoController
	preFilter  PreFilter

	reference *audio.Buffer
	capture   *audio.Buffer
	linear    *audio.Buffer // nil unless ExportLinear

	referenceFrame *audio.Frame
	captureFrame   *audio.Frame

	stages []stage
	frames uint64
	closed bool
}

// New creates a session for cfg. It fails with ErrNilConfig when cfg is nil
// and with a validation error for an unsupported format; no session is
// returned on failure.
func New(cfg *Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.newController == nil {
		o.newController = engineFactory(o.log)
	}

	s := &Session{
		cfg:     *cfg,
		profile: tuning.Select(cfg.SuppressionLevel),
		log:     o.log,
	}

	if err := s.init(o); err != nil {
		s.release()
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"function":          "aec.New",
		"sample_rate":       s.cfg.SampleRate,
		"channels":          s.cfg.Channels,
		"export_linear":     s.cfg.ExportLinear,
		"tier":              s.profile.Tier.String(),
		"suppression_level": s.profile.Level,
	}).Info("Echo cancellation session created")

	return s, nil
}

func (s *Session) init(o options) error {
	ecfg := s.profile.EngineConfig()
	ecfg.Filter.ExportLinearAecOutput = s.cfg.ExportLinear

	controller, err := o.newController(ecfg, s.cfg.SampleRate, s.cfg.Channels, s.cfg.Channels)
	if err != nil {
		return fmt.Errorf("echo controller: %w", err)
	}
	s.controller = controller
	s.preFilter = o.newPreFilter(s.cfg.SampleRate, s.cfg.Channels)

	stream := s.cfg.stream()
	if s.reference, err = audio.NewBuffer(stream, stream, stream); err != nil {
		return fmt.Errorf("reference buffer: %w", err)
	}
	if s.capture, err = audio.NewBuffer(stream, stream, stream); err != nil {
		return fmt.Errorf("capture buffer: %w", err)
	}
	if s.cfg.ExportLinear {
		lin := audio.StreamConfig{SampleRate: LinearOutputRate, Channels: s.cfg.Channels}
		if s.linear, err = audio.NewBuffer(lin, lin, lin); err != nil {
			return fmt.Errorf("linear buffer: %w", err)
		}
	}

	s.referenceFrame = audio.NewFrame()
	s.captureFrame = audio.NewFrame()
	s.stages = pipeline()

	return nil
}

// release drops every owned resource. Owned parts that hold resources of
// their own are closed.
func (s *Session) release() {
	for _, part := range []any{s.controller, s.preFilter} {
		if c, ok := part.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.log.WithFields(logrus.Fields{
					"function": "Session.release",
					"error":    err.Error(),
				}).Warn("Failed to close session resource")
			}
		}
	}
	s.controller = nil
	s.preFilter = nil
	s.reference = nil
	s.capture = nil
	s.linear = nil
	s.referenceFrame = nil
	s.captureFrame = nil
	s.stages = nil
}

// Close releases the session. It is safe on a nil session and when called
// more than once.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	s.release()

	s.log.WithFields(logrus.Fields{
		"function": "Session.Close",
		"frames":   s.frames,
	}).Info("Echo cancellation session closed")

	return nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() Config { return s.cfg }

// Profile returns the tuning profile selected at creation.
func (s *Session) Profile() tuning.Profile { return s.profile }

// Frames returns the number of frames processed successfully.
func (s *Session) Frames() uint64 { return s.frames }

// Metrics returns the echo controller statistics, or zero metrics once the
// session is closed.
func (s *Session) Metrics() engine.Metrics {
	if s == nil || s.closed || s.controller == nil {
		return engine.Metrics{}
	}
	return s.controller.Metrics()
}
