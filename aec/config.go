// SPDX-License-Identifier: EPL-2.0

package aec

import (
	"errors"
	"fmt"

	"github.com/ik5/aecpbx/audio"
)

const (
	// LinearOutputRate is the sample rate of the linear output.
	LinearOutputRate = audio.BandRate
	// LinearOutputSamples is how many samples Process writes to a linear
	// output array.
	LinearOutputSamples = 320
	// MaxChannels is the most channels a 48 kHz frame can stage.
	MaxChannels = audio.MaxDataSamples / (48000 / audio.ChunksPerSecond)
)

// Config describes a session. It is fixed for the session's lifetime.
type Config struct {
	SampleRate   int  `yaml:"sample_rate"`
	Channels     int  `yaml:"channels"`
	ExportLinear bool `yaml:"export_linear"`
	// SuppressionLevel in [0, 1] selects how aggressively residual echo is
	// suppressed. Zero or below selects the maximum.
	SuppressionLevel float32 `yaml:"suppression_level"`
}

// Validate reports every unsupported field.
func (c Config) Validate() error {
	var errs []error
	switch c.SampleRate {
	case 16000, 32000, 48000:
	default:
		errs = append(errs, fmt.Errorf("%d Hz: %w", c.SampleRate, ErrUnsupportedRate))
	}
	if c.Channels < 1 || c.Channels > MaxChannels {
		errs = append(errs, fmt.Errorf("%d channels, want 1..%d: %w", c.Channels, MaxChannels, ErrInvalidChannels))
	}
	return errors.Join(errs...)
}

// FrameLength returns the samples per channel of one frame.
func (c Config) FrameLength() int {
	return c.SampleRate / audio.ChunksPerSecond
}

func (c Config) stream() audio.StreamConfig {
	return audio.StreamConfig{SampleRate: c.SampleRate, Channels: c.Channels}
}
