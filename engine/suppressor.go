// SPDX-License-Identifier: EPL-2.0

package engine

import "math"

const (
	erleSmoothing  = 0.1
	noiseRiseRate  = 1.02
	minNoisePower  = 1.0
	powerEpsilon   = 1e-3
	minEchoForErle = 100.0
)

// frameAnalysis gathers the per-frame powers the suppressor works from,
// summed over capture channels.
type frameAnalysis struct {
	captureLow, captureMid float64
	errorLow, errorMid     float64
	echoLow, echoMid       float64

	render       renderStats
	renderActive bool
	adaptable    bool
}

// gains are the linear suppression gains for one frame.
type gains struct {
	lf, mf, hf float64
}

// suppressor turns echo-to-nearend ratios into smoothed suppression gains.
type suppressor struct {
	cfg  SuppressorConfig
	erle ErleConfig
	aud  EchoAudibilityConfig

	erleLF, erleMF float64
	prev           gains
	noise          float64
	noiseInit      bool
	nearEnd        bool
}

func newSuppressor(cfg Config) *suppressor {
	s := &suppressor{
		cfg:  cfg.Suppressor,
		erle: cfg.Erle,
		aud:  cfg.EchoAudibility,
	}
	s.reset()
	return s
}

func (s *suppressor) reset() {
	s.erleLF = float64(s.erle.Min)
	s.erleMF = float64(s.erle.Min)
	s.prev = gains{lf: 1, mf: 1, hf: 1}
	s.noise = 0
	s.noiseInit = false
	s.nearEnd = false
}

// resetErle forgets the filter performance estimate, e.g. after a capture
// level change.
func (s *suppressor) resetErle() {
	s.erleLF = float64(s.erle.Min)
	s.erleMF = float64(s.erle.Min)
}

// update consumes one frame and returns the gains to apply to it.
func (s *suppressor) update(a frameAnalysis) gains {
	s.updateErle(a)
	s.updateNoise(a.errorLow + a.errorMid)

	residualLow := a.echoLow / s.erleLF
	residualMid := a.echoMid / s.erleMF
	enrLF := residualLow / (a.errorLow + powerEpsilon)
	enrMF := residualMid / (a.errorMid + powerEpsilon)

	tuning := s.cfg.NormalTuning
	floor := float64(s.cfg.GainFloor)

	target := gains{lf: 1, mf: 1, hf: 1}
	if audible(a.render.lowPower, s.aud.AudibilityThresholdLF) {
		target.lf = maskGain(enrLF, tuning.MaskLF, floor)
	}
	if audible(a.render.midPower, s.aud.AudibilityThresholdMF) {
		target.mf = maskGain(enrMF, tuning.MaskHF, floor)
	}

	s.nearEnd = enrLF <= float64(tuning.MaskLF.EnrTransparent) &&
		enrMF <= float64(tuning.MaskHF.EnrTransparent)

	inc := float64(tuning.MaxIncFactor)
	dec := float64(tuning.MaxDecFactorLF)
	g := gains{
		lf: slew(target.lf, s.prev.lf, inc, dec, floor),
		mf: slew(target.mf, s.prev.mf, inc, dec, floor),
	}

	bound := s.highBandBound(a, residualLow+residualMid)
	g.hf = max(min(g.mf, bound), floor)

	s.prev = g
	return g
}

// highBandBound limits the gain of the bands above 8 kHz during echo and
// when the render upper bands dominate the lower one.
func (s *suppressor) highBandBound(a frameAnalysis, residual float64) float64 {
	cfg := s.cfg.HighBandsSuppression
	bound := 1.0

	if audible(a.render.highPower, s.aud.AudibilityThresholdHF) &&
		!s.nearEnd && residual > float64(cfg.EnrThreshold)*s.noise {
		bound = float64(cfg.MaxGainDuringEcho)
	}

	low := a.render.lowBlockEnergy
	high := a.render.highBlockEnergy
	activation := BlockSize * float64(cfg.AntiHowlingActivationThreshold)
	if high >= max(activation, low) && high > 0 {
		bound = min(bound, float64(cfg.AntiHowlingGain)*math.Sqrt(low/high))
	}

	return bound
}

func (s *suppressor) updateErle(a frameAnalysis) {
	if !a.adaptable {
		return
	}
	lo, hiL, hiH := float64(s.erle.Min), float64(s.erle.MaxL), float64(s.erle.MaxH)
	if a.echoLow > minEchoForErle {
		inst := min(max(a.captureLow/(a.errorLow+powerEpsilon), lo), hiL)
		s.erleLF += erleSmoothing * (inst - s.erleLF)
	}
	if a.echoMid > minEchoForErle {
		inst := min(max(a.captureMid/(a.errorMid+powerEpsilon), lo), hiH)
		s.erleMF += erleSmoothing * (inst - s.erleMF)
	}
}

// updateNoise tracks the floor of the error power: it follows drops
// immediately and rises slowly.
func (s *suppressor) updateNoise(power float64) {
	power = max(power, minNoisePower)
	switch {
	case !s.noiseInit:
		s.noise = power
		s.noiseInit = true
	case power < s.noise:
		s.noise = power
	default:
		s.noise = min(s.noise*noiseRiseRate, power)
	}
}

func audible(power float64, threshold float32) bool {
	return math.Sqrt(power) >= float64(threshold)
}

func maskGain(enr float64, m MaskingThresholds, floor float64) float64 {
	t, s := float64(m.EnrTransparent), float64(m.EnrSuppress)
	switch {
	case enr <= t:
		return 1
	case enr >= s:
		return floor
	}
	return 1 - (1-floor)*(enr-t)/(s-t)
}

func slew(target, prev, inc, dec, floor float64) float64 {
	g := min(target, prev*inc)
	g = max(g, prev*dec)
	return min(max(g, floor), 1)
}
