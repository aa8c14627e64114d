// SPDX-License-Identifier: EPL-2.0

package aec

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/aecpbx/engine"
	"github.com/ik5/aecpbx/internal/audiotest"
	"github.com/ik5/aecpbx/tuning"
	"github.com/ik5/aecpbx/utils"
)

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func newSession(t *testing.T, cfg Config, opts ...Option) *Session {
	t.Helper()

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := New(&cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func filled(n int, v int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestNew_NilConfig(t *testing.T) {
	t.Parallel()

	s, err := New(nil)
	require.ErrorIs(t, err, ErrNilConfig)
	assert.Nil(t, s)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	s, err := New(&Config{SampleRate: 44100, Channels: 0}, WithLogger(quietLogger()))
	assert.Nil(t, s)
	require.ErrorIs(t, err, ErrUnsupportedRate)
	require.ErrorIs(t, err, ErrInvalidChannels)

	_, err = New(&Config{SampleRate: 48000, Channels: MaxChannels + 1}, WithLogger(quietLogger()))
	require.ErrorIs(t, err, ErrInvalidChannels)
}

func TestNew_ControllerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s, err := New(&Config{SampleRate: 16000, Channels: 1},
		WithLogger(quietLogger()),
		WithEchoControllerFactory(func(engine.Config, int, int, int) (EchoController, error) {
			return nil, boom
		}))

	assert.Nil(t, s)
	require.ErrorIs(t, err, boom)
}

func TestNew_SelectsProfile(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	s := newSession(t, Config{SampleRate: 16000, Channels: 1, SuppressionLevel: 0.6}, WithLogger(logger))

	assert.Equal(t, tuning.TierMedium, s.Profile().Tier)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "aec.New", entry.Data["function"])
	assert.Equal(t, "medium", entry.Data["tier"])
	assert.Equal(t, s.Profile().Level, entry.Data["suppression_level"])
	assert.NotContains(t, entry.Data, "level")
}

func TestSession_NilSession(t *testing.T) {
	t.Parallel()

	var s *Session
	frame := make([]int16, 160)

	err := s.Process(frame, frame, frame, nil, 160, 0)
	require.ErrorIs(t, err, ErrNilSession)
	assert.Equal(t, -1, StatusCode(err))
	assert.NoError(t, s.Close())
	assert.Equal(t, engine.Metrics{}, s.Metrics())
}

func TestSession_PreconditionsLeaveStateUntouched(t *testing.T) {
	t.Parallel()

	cfg := Config{SampleRate: 32000, Channels: 2, ExportLinear: true}
	path := audiotest.EchoPath{SampleRate: 32000, Channels: 2, Frequency: 700, Amplitude: 9000, Attenuation: 0.4}
	ref, mic := path.Reference(0), path.Capture(0)
	n := len(ref)

	used := newSession(t, cfg)
	out := filled(n, 99)
	lin := filled(LinearOutputSamples, 99)
	short := make([]int16, n-1)

	failures := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"nil reference", func() error { return used.Process(nil, mic, out, lin, 320, 0) }, ErrNilFrame},
		{"nil capture", func() error { return used.Process(ref, nil, out, lin, 320, 0) }, ErrNilFrame},
		{"nil output", func() error { return used.Process(ref, mic, nil, lin, 320, 0) }, ErrNilFrame},
		{"frame length", func() error { return used.Process(ref, mic, out, lin, 160, 0) }, ErrFrameLength},
		{"short reference", func() error { return used.Process(short, mic, out, lin, 320, 0) }, ErrShortFrame},
		{"short output", func() error { return used.Process(ref, mic, short, lin, 320, 0) }, ErrShortFrame},
		{"short linear", func() error { return used.Process(ref, mic, out, lin[:10], 320, 0) }, ErrShortLinearFrame},
	}
	for _, f := range failures {
		err := f.call()
		require.ErrorIs(t, err, f.wantErr, f.name)
		assert.Negative(t, StatusCode(err), f.name)
	}

	assert.Equal(t, filled(n, 99), out, "failed calls must not write output")
	assert.Equal(t, filled(LinearOutputSamples, 99), lin, "failed calls must not write linear output")
	assert.Zero(t, used.Frames())

	fresh := newSession(t, cfg)
	want := make([]int16, n)
	require.NoError(t, fresh.Process(ref, mic, want, nil, 320, 0))
	require.NoError(t, used.Process(ref, mic, out, nil, 320, 0))
	assert.Equal(t, want, out)
}

func TestSession_LinearNotRequested(t *testing.T) {
	t.Parallel()

	s := newSession(t, Config{SampleRate: 16000, Channels: 1})
	frame := make([]int16, 160)
	lin := filled(LinearOutputSamples, 0x55)

	require.NoError(t, s.Process(frame, frame, frame, lin, 160, 0))
	assert.Equal(t, filled(LinearOutputSamples, 0x55), lin)

	// Too short for a linear frame, but ignored when linear output is off.
	require.NoError(t, s.Process(frame, frame, frame, lin[:10], 160, 0))
}

func TestSession_LinearWritten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		want     []int16
	}{
		{"mono", 1, append(filled(160, 7), filled(160, 0)...)},
		{"stereo", 2, filled(320, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctrl *mockController
			s := newSession(t, Config{SampleRate: 48000, Channels: tt.channels, ExportLinear: true},
				withMocks(&recorder{}, &ctrl)...)

			frame := make([]int16, 480*tt.channels)
			lin := filled(LinearOutputSamples+4, -1)
			require.NoError(t, s.Process(frame, frame, frame, lin, 480, 0))

			assert.Equal(t, tt.want, lin[:LinearOutputSamples])
			assert.Equal(t, filled(4, -1), lin[LinearOutputSamples:], "nothing past 320 samples is written")
		})
	}
}

func TestSession_ConvergesOnSyntheticEcho(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate, channels, delay int
	}{
		{16000, 1, 2},
		{32000, 1, 4},
		{48000, 2, 1},
	}

	for _, tt := range tests {
		path := audiotest.EchoPath{
			SampleRate:  tt.rate,
			Channels:    tt.channels,
			Frequency:   1000,
			Amplitude:   10000,
			Attenuation: 0.5,
			DelayChunks: tt.delay,
		}
		s := newSession(t, Config{SampleRate: tt.rate, Channels: tt.channels, SuppressionLevel: 1})
		out := make([]int16, path.FramesPerChunk()*tt.channels)

		var first, last float64
		for k := range 50 {
			require.NoError(t, s.Process(path.Reference(k), path.Capture(k), out, nil, path.FramesPerChunk(), tt.delay))
			switch k {
			case 0:
				first = utils.RMSInt16(out)
			case 49:
				last = utils.RMSInt16(out)
			}
		}

		require.Greater(t, first, 1000.0, "%d Hz: first frame should carry the echo", tt.rate)
		reduction := 20 * math.Log10(first/max(last, 1e-9))
		assert.GreaterOrEqual(t, reduction, 10.0, "%d Hz x %d: echo reduced by %.1f dB", tt.rate, tt.channels, reduction)
		assert.Equal(t, uint64(50), s.Frames())
		assert.Equal(t, tt.delay, s.Metrics().DelayFrames)
	}
}

func TestSession_RecreateIsIdentical(t *testing.T) {
	t.Parallel()

	cfg := Config{SampleRate: 48000, Channels: 1, ExportLinear: true, SuppressionLevel: 0.7}
	path := audiotest.EchoPath{SampleRate: 48000, Channels: 1, Frequency: 300, Amplitude: 12000, Attenuation: 0.6,
		NearEndFrequency: 1800, NearEndAmplitude: 2000}

	run := func() ([]int16, []int16) {
		s, err := New(&cfg, WithLogger(quietLogger()))
		require.NoError(t, err)
		defer s.Close()

		out := make([]int16, 480)
		lin := make([]int16, LinearOutputSamples)
		for k := range 3 {
			require.NoError(t, s.Process(path.Reference(k), path.Capture(k), out, lin, 480, 0))
		}
		return out, lin
	}

	out1, lin1 := run()
	out2, lin2 := run()
	assert.Equal(t, out1, out2)
	assert.Equal(t, lin1, lin2)
}

func TestSession_CloseTwice(t *testing.T) {
	t.Parallel()

	var ctrl *mockController
	logger, hook := test.NewNullLogger()
	s, err := New(&Config{SampleRate: 16000, Channels: 1},
		append(withMocks(&recorder{}, &ctrl), WithLogger(logger))...)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, ctrl.closed, "owned controller closed exactly once")
	assert.Equal(t, "Session.Close", hook.LastEntry().Data["function"])

	frame := make([]int16, 160)
	require.ErrorIs(t, s.Process(frame, frame, frame, nil, 160, 0), ErrClosed)
	assert.Equal(t, engine.Metrics{}, s.Metrics())
}

func TestSession_Independent(t *testing.T) {
	t.Parallel()

	path := audiotest.EchoPath{SampleRate: 16000, Channels: 1, Frequency: 1000, Amplitude: 10000, Attenuation: 0.5}
	a := newSession(t, Config{SampleRate: 16000, Channels: 1})
	b := newSession(t, Config{SampleRate: 16000, Channels: 1})

	out := make([]int16, 160)
	for k := range 20 {
		require.NoError(t, a.Process(path.Reference(k), path.Capture(k), out, nil, 160, 0))
	}

	fresh := newSession(t, Config{SampleRate: 16000, Channels: 1})
	want := make([]int16, 160)
	got := make([]int16, 160)
	require.NoError(t, fresh.Process(path.Reference(0), path.Capture(0), want, nil, 160, 0))
	require.NoError(t, b.Process(path.Reference(0), path.Capture(0), got, nil, 160, 0))
	assert.True(t, slices.Equal(want, got), "sessions must not share state")
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, StatusCode(nil))
	assert.Equal(t, -1, StatusCode(ErrNilFrame))
}
