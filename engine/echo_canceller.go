// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/utils"
)

const (
	// divergenceRatio is how much louder than the capture the filter error
	// may get before the filter is considered diverged.
	divergenceRatio  = 1.5
	// saturationLevel is the capture magnitude treated as clipped.
	saturationLevel  = 32000
	metricsSmoothing = 0.1
)

// Metrics reports the state of the echo canceller.
type Metrics struct {
	// EchoReturnLoss is the smoothed render-to-capture level ratio, in dB.
	EchoReturnLoss            float64
	// EchoReturnLossEnhancement is the smoothed capture-to-filter-error
	// ratio, in dB.
	EchoReturnLossEnhancement float64
	DelayFrames               int
	DivergentFilterCount      int
}

// Option configures an EchoCanceller.
type Option func(*EchoCanceller)

// WithLogger sets the logger used for divergence and saturation reports.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *EchoCanceller) {
		e.log = l
	}
}

// EchoCanceller removes the echo of a render signal from a capture signal.
// It is not safe for concurrent use.
type EchoCanceller struct {
	cfg             Config
	sampleRate      int
	numBands        int
	renderChannels  int
	captureChannels int
	log             logrus.FieldLogger

	render  *renderHistory
	filters []*adaptiveFilter
	supp    *suppressor

	delay     int
	saturated bool
	active    bool

	// scratch, per frame
	renderMono []float64
	seg        []float64
	echo       [][]float64
	errs       [][]float64
	errLow     [][]float64
	echoLow    []float64
	scratch    []float64

	captureXover []crossover
	errorXover   []crossover
	echoXover    []crossover

	renderPower, capturePower, errorPower float64
	divergences                           int
}

// New creates an echo canceller for the given rate and channel layout. cfg
// is validated, so out-of-range values are clamped rather than rejected.
func New(cfg Config, sampleRate, renderChannels, captureChannels int, opts ...Option) (*EchoCanceller, error) {
	switch sampleRate {
	case 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("%d Hz: %w", sampleRate, ErrUnsupportedRate)
	}
	if renderChannels <= 0 || captureChannels <= 0 {
		return nil, fmt.Errorf("render %d, capture %d: %w",
			renderChannels, captureChannels, ErrInvalidChannels)
	}

	e := &EchoCanceller{
		cfg:             cfg,
		sampleRate:      sampleRate,
		numBands:        sampleRate / audio.BandRate,
		renderChannels:  renderChannels,
		captureChannels: captureChannels,
		log:             logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(e)
	}

	if !Validate(&e.cfg) {
		e.log.WithFields(logrus.Fields{
			"function": "engine.New",
		}).Warn("Echo canceller config out of range, clamped")
	}

	const frameLen = audio.BandRate / audio.ChunksPerSecond
	taps := e.cfg.Filter.Main.LengthBlocks * BlockSize

	e.render = newRenderHistory(e.cfg.Delay.MaxDelayFrames, taps, frameLen)
	e.supp = newSuppressor(e.cfg)
	e.renderMono = make([]float64, frameLen)
	e.seg = make([]float64, taps-1+frameLen)
	e.echoLow = make([]float64, frameLen)
	e.scratch = make([]float64, frameLen)

	e.filters = make([]*adaptiveFilter, captureChannels)
	e.echo = make([][]float64, captureChannels)
	e.errs = make([][]float64, captureChannels)
	e.errLow = make([][]float64, captureChannels)
	e.captureXover = make([]crossover, captureChannels)
	e.errorXover = make([]crossover, captureChannels)
	e.echoXover = make([]crossover, captureChannels)
	for ch := range captureChannels {
		e.filters[ch] = newAdaptiveFilter(e.cfg.Filter.Main)
		e.echo[ch] = make([]float64, frameLen)
		e.errs[ch] = make([]float64, frameLen)
		e.errLow[ch] = make([]float64, frameLen)
		e.captureXover[ch] = newCrossover(audio.BandRate)
		e.errorXover[ch] = newCrossover(audio.BandRate)
		e.echoXover[ch] = newCrossover(audio.BandRate)
	}

	e.log.WithFields(logrus.Fields{
		"function":         "engine.New",
		"sample_rate":      sampleRate,
		"render_channels":  renderChannels,
		"capture_channels": captureChannels,
		"filter_taps":      taps,
	}).Debug("Echo canceller created")

	return e, nil
}

// Config returns the validated configuration in use.
func (e *EchoCanceller) Config() Config { return e.cfg }

// AnalyzeRender records one chunk of far-end audio. Multi-band buffers must
// be split.
func (e *EchoCanceller) AnalyzeRender(b *audio.Buffer) error {
	if err := e.checkBuffer(b, e.renderChannels); err != nil {
		return err
	}

	clear(e.renderMono)
	var highPower, highBlock float64
	inv := 1 / float64(e.renderChannels)
	for ch := range e.renderChannels {
		for i, v := range b.Band(ch, 0) {
			e.renderMono[i] += float64(v) * inv
		}
		for band := 1; band < e.numBands; band++ {
			x := b.Band(ch, band)
			highPower += utils.MeanSquare(x) * inv
			highBlock += utils.SumOfSquares(x[len(x)-BlockSize:]) * inv
		}
	}

	e.render.push(e.renderMono, highPower, highBlock)
	return nil
}

// AnalyzeCapture inspects the unprocessed capture chunk. It must run before
// ProcessCapture for the same chunk.
func (e *EchoCanceller) AnalyzeCapture(b *audio.Buffer) error {
	if b.NumChannels() != e.captureChannels || b.SampleRate() != e.sampleRate {
		return fmt.Errorf("capture %d Hz x %d: %w", b.SampleRate(), b.NumChannels(), ErrBufferMismatch)
	}

	e.saturated = false
	for ch := range e.captureChannels {
		for _, v := range b.Channel(ch) {
			if v >= saturationLevel || v <= -saturationLevel {
				e.saturated = true
				break
			}
		}
	}
	if e.saturated {
		e.log.WithFields(logrus.Fields{
			"function": "EchoCanceller.AnalyzeCapture",
		}).Debug("Capture saturated, filter adaptation frozen")
	}

	return nil
}

// SetAudioBufferDelay sets the render-to-capture delay in 10 ms frames. It
// is clamped to [0, MaxDelayFrames].
func (e *EchoCanceller) SetAudioBufferDelay(frames int) {
	d := min(max(frames, 0), e.cfg.Delay.MaxDelayFrames)
	if d != e.delay {
		e.log.WithFields(logrus.Fields{
			"function":  "EchoCanceller.SetAudioBufferDelay",
			"requested": frames,
			"applied":   d,
		}).Debug("Render delay changed")
	}
	e.delay = d
}

// ProcessCapture removes echo from a split capture chunk in place. When
// linear is non-nil it receives the filter output before suppression, as a
// single 16 kHz band. levelChange signals a capture gain change and resets
// the filter performance estimate.
func (e *EchoCanceller) ProcessCapture(capture, linear *audio.Buffer, levelChange bool) error {
	if err := e.checkBuffer(capture, e.captureChannels); err != nil {
		return err
	}
	frameLen := len(e.renderMono)
	if linear != nil && (linear.NumChannels() != e.captureChannels || linear.NumFrames() != frameLen) {
		return fmt.Errorf("linear %d Hz x %d: %w", linear.SampleRate(), linear.NumChannels(), ErrBufferMismatch)
	}
	if levelChange {
		e.supp.resetErle()
	}

	aligned := e.render.frames - 1 - e.delay
	e.render.gather(e.seg, aligned)
	stats, ok := e.render.frameStats(aligned)
	gate := float64(e.cfg.Filter.Main.NoiseGate) / BlockSize
	e.active = ok && stats.power >= gate

	a := frameAnalysis{
		render:       stats,
		renderActive: e.active,
		adaptable:    e.active && !e.saturated,
	}

	var capturePower, errorPower float64
	for ch := range e.captureChannels {
		c := capture.Band(ch, 0)
		echo, errs := e.echo[ch], e.errs[ch]
		f := e.filters[ch]

		f.filter(e.seg, c, echo, errs, a.adaptable)

		cp := utils.MeanSquare(c)
		var ep float64
		for _, v := range errs {
			ep += v * v
		}
		ep /= float64(len(errs))

		if ep > divergenceRatio*cp && cp > minNoisePower {
			for i, v := range c {
				errs[i] = float64(v)
			}
			clear(echo)
			ep = cp
			f.leak(e.cfg.Filter.Main.LeakageDiverged)
			e.divergences++
			e.log.WithFields(logrus.Fields{
				"function": "EchoCanceller.ProcessCapture",
				"channel":  ch,
			}).Warn("Linear filter diverged, falling back to capture")
		} else {
			f.leak(e.cfg.Filter.Main.LeakageConverged)
		}
		capturePower += cp
		errorPower += ep

		if linear != nil {
			out := linear.Channel(ch)
			for i, v := range errs {
				out[i] = float32(v)
			}
		}

		cl, cm := e.captureXover[ch].split(toFloat64(c, e.scratch), e.scratch)
		el, em := e.errorXover[ch].split(errs, e.errLow[ch])
		yl, ym := e.echoXover[ch].split(echo, e.echoLow)
		a.captureLow += cl
		a.captureMid += cm
		a.errorLow += el
		a.errorMid += em
		a.echoLow += yl
		a.echoMid += ym
	}

	prev := e.supp.prev
	g := e.supp.update(a)
	e.applyGains(capture, prev, g)
	e.updateMetrics(stats.power, capturePower, errorPower)

	return nil
}

// applyGains writes the suppressed error signal into band 0 and scales the
// upper bands, ramping linearly from the previous frame's gains.
func (e *EchoCanceller) applyGains(b *audio.Buffer, from, to gains) {
	n := float64(len(e.renderMono))
	for ch := range e.captureChannels {
		out := b.Band(ch, 0)
		errs, low := e.errs[ch], e.errLow[ch]
		for i := range out {
			t := float64(i+1) / n
			gl := from.lf + t*(to.lf-from.lf)
			gm := from.mf + t*(to.mf-from.mf)
			out[i] = float32(gl*low[i] + gm*(errs[i]-low[i]))
		}
		for band := 1; band < e.numBands; band++ {
			x := b.Band(ch, band)
			for i := range x {
				t := float64(i+1) / n
				x[i] *= float32(from.hf + t*(to.hf-from.hf))
			}
		}
	}
}

func (e *EchoCanceller) updateMetrics(render, capture, errPower float64) {
	e.renderPower += metricsSmoothing * (render - e.renderPower)
	e.capturePower += metricsSmoothing * (capture - e.capturePower)
	e.errorPower += metricsSmoothing * (errPower - e.errorPower)
}

// Metrics returns the current echo canceller statistics.
func (e *EchoCanceller) Metrics() Metrics {
	return Metrics{
		EchoReturnLoss:            utils.PowerDB(e.renderPower) - utils.PowerDB(e.capturePower),
		EchoReturnLossEnhancement: utils.PowerDB(e.capturePower) - utils.PowerDB(e.errorPower),
		DelayFrames:               e.delay,
		DivergentFilterCount:      e.divergences,
	}
}

// ActiveProcessing reports whether the render signal aligned with the last
// capture chunk was loud enough to adapt on.
func (e *EchoCanceller) ActiveProcessing() bool { return e.active }

// Reset returns the canceller to its initial, unconverged state.
func (e *EchoCanceller) Reset() {
	e.render.reset()
	for ch := range e.captureChannels {
		e.filters[ch].reset()
		e.captureXover[ch].reset()
		e.errorXover[ch].reset()
		e.echoXover[ch].reset()
	}
	e.supp.reset()
	e.delay = 0
	e.saturated = false
	e.active = false
	e.renderPower, e.capturePower, e.errorPower = 0, 0, 0
	e.divergences = 0
}

func (e *EchoCanceller) checkBuffer(b *audio.Buffer, channels int) error {
	if b.NumChannels() != channels || b.SampleRate() != e.sampleRate {
		return fmt.Errorf("%d Hz x %d: %w", b.SampleRate(), b.NumChannels(), ErrBufferMismatch)
	}
	if e.numBands > 1 && !b.IsSplit() {
		return ErrBufferNotSplit
	}
	return nil
}

func toFloat64(x []float32, dst []float64) []float64 {
	for i, v := range x {
		dst[i] = float64(v)
	}
	return dst
}
