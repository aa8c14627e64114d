// SPDX-License-Identifier: EPL-2.0

package aec

import (
	"fmt"

	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/engine"
)

// recorder collects the calls made on the mocks, in order.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

type mockController struct {
	rec      *recorder
	cfg      engine.Config
	closed   int
	failWith error
}

func (m *mockController) AnalyzeRender(b *audio.Buffer) error {
	m.rec.add("analyze-render split=%v", b.IsSplit())
	return nil
}

func (m *mockController) AnalyzeCapture(b *audio.Buffer) error {
	m.rec.add("analyze-capture split=%v", b.IsSplit())
	return nil
}

func (m *mockController) SetAudioBufferDelay(frames int) {
	m.rec.add("set-delay %d", frames)
}

func (m *mockController) ProcessCapture(capture, linear *audio.Buffer, _ bool) error {
	m.rec.add("process-capture split=%v linear=%v", capture.IsSplit(), linear != nil)
	if m.failWith != nil {
		return m.failWith
	}
	if linear != nil {
		for ch := range linear.NumChannels() {
			for i := range linear.Channel(ch) {
				linear.Channel(ch)[i] = 7
			}
		}
	}
	return nil
}

func (m *mockController) Metrics() engine.Metrics { return engine.Metrics{DelayFrames: -1} }

func (m *mockController) Close() error {
	m.closed++
	return nil
}

type mockPreFilter struct {
	rec *recorder
}

func (m *mockPreFilter) Process(b *audio.Buffer, useSplitBand bool) error {
	m.rec.add("pre-filter split=%v split-band=%v", b.IsSplit(), useSplitBand)
	return nil
}

// withMocks wires a recording controller and pre-filter into a session.
func withMocks(rec *recorder, ctrl **mockController) []Option {
	return []Option{
		WithEchoControllerFactory(func(cfg engine.Config, _, _, _ int) (EchoController, error) {
			m := &mockController{rec: rec, cfg: cfg}
			*ctrl = m
			return m, nil
		}),
		WithHighPassFactory(func(int, int) PreFilter {
			return &mockPreFilter{rec: rec}
		}),
	}
}
