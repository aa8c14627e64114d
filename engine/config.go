// SPDX-License-Identifier: EPL-2.0

package engine

import "cmp"

// BlockSize is the sub-block length, in 16 kHz samples, that the filter
// length and the energy thresholds are expressed in.
const BlockSize = 64

// Config holds the echo canceller tunables.
type Config struct {
	Delay          DelayConfig
	Filter         FilterConfig
	Erle           ErleConfig
	EchoAudibility EchoAudibilityConfig
	Suppressor     SuppressorConfig
}

type DelayConfig struct {
	// MaxDelayFrames bounds the render-to-capture delay, in 10 ms frames.
	MaxDelayFrames int
}

type FilterConfig struct {
	Main MainFilterConfig

	// ExportLinearAecOutput enables the pre-suppression linear output.
	ExportLinearAecOutput bool
}

type MainFilterConfig struct {
	LengthBlocks     int
	StepSize         float32
	LeakageConverged float32
	LeakageDiverged  float32
	ErrorFloor       float32
	ErrorCeil        float32
	// NoiseGate is the render energy per BlockSize samples below which the
	// filter does not adapt.
	NoiseGate        float32
}

// ErleConfig bounds the echo return loss enhancement the suppressor credits
// the linear filter with, for the low (L) and high (H) frequency regions.
type ErleConfig struct {
	Min  float32
	MaxL float32
	MaxH float32
}

// EchoAudibilityConfig holds render RMS levels below which echo in a region
// is treated as inaudible.
type EchoAudibilityConfig struct {
	AudibilityThresholdLF float32
	AudibilityThresholdMF float32
	AudibilityThresholdHF float32
}

// MaskingThresholds maps an echo-to-nearend ratio to a gain: transparent at
// or below EnrTransparent, fully suppressed at or above EnrSuppress.
type MaskingThresholds struct {
	EnrTransparent float32
	EnrSuppress    float32
}

type SuppressorTuning struct {
	MaskLF         MaskingThresholds
	MaskHF         MaskingThresholds
	MaxIncFactor   float32
	MaxDecFactorLF float32
}

type HighBandsSuppression struct {
	EnrThreshold                   float32
	MaxGainDuringEcho              float32
	AntiHowlingActivationThreshold float32
	AntiHowlingGain                float32
}

type SuppressorConfig struct {
	NormalTuning         SuppressorTuning
	GainFloor            float32
	HighBandsSuppression HighBandsSuppression
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Delay: DelayConfig{MaxDelayFrames: 50},
		Filter: FilterConfig{
			Main: MainFilterConfig{
				LengthBlocks:     13,
				StepSize:         0.5,
				LeakageConverged: 0.00005,
				LeakageDiverged:  0.05,
				ErrorFloor:       0.001,
				ErrorCeil:        2,
				NoiseGate:        20075344,
			},
		},
		Erle: ErleConfig{Min: 1, MaxL: 4, MaxH: 1.5},
		EchoAudibility: EchoAudibilityConfig{
			AudibilityThresholdLF: 10,
			AudibilityThresholdMF: 10,
			AudibilityThresholdHF: 10,
		},
		Suppressor: SuppressorConfig{
			NormalTuning: SuppressorTuning{
				MaskLF:         MaskingThresholds{EnrTransparent: 0.3, EnrSuppress: 0.4},
				MaskHF:         MaskingThresholds{EnrTransparent: 0.07, EnrSuppress: 0.1},
				MaxIncFactor:   2,
				MaxDecFactorLF: 0.25,
			},
			GainFloor: 0.001,
			HighBandsSuppression: HighBandsSuppression{
				EnrThreshold:                   1,
				MaxGainDuringEcho:              1,
				AntiHowlingActivationThreshold: 400,
				AntiHowlingGain:                1,
			},
		},
	}
}

// Validate clamps every field of cfg into its valid range. It reports true
// when nothing had to be changed.
func Validate(cfg *Config) bool {
	ok := true
	check := func(changed bool) { ok = ok && !changed }

	check(limit(&cfg.Delay.MaxDelayFrames, 0, 500))

	m := &cfg.Filter.Main
	check(limit(&m.LengthBlocks, 1, 50))
	check(limit(&m.StepSize, 0.01, 1))
	check(limit(&m.LeakageConverged, 0, 1))
	check(limit(&m.LeakageDiverged, 0, 1))
	check(limit(&m.ErrorFloor, 0, 1000))
	check(limit(&m.ErrorCeil, 0.01, 1000))
	check(limit(&m.NoiseGate, 0, 1e9))

	e := &cfg.Erle
	check(limit(&e.Min, 1, 1e5))
	check(limit(&e.MaxL, e.Min, 1e5))
	check(limit(&e.MaxH, e.Min, 1e5))

	a := &cfg.EchoAudibility
	check(limit(&a.AudibilityThresholdLF, 0, 1e5))
	check(limit(&a.AudibilityThresholdMF, 0, 1e5))
	check(limit(&a.AudibilityThresholdHF, 0, 1e5))

	s := &cfg.Suppressor
	for _, mask := range []*MaskingThresholds{&s.NormalTuning.MaskLF, &s.NormalTuning.MaskHF} {
		check(limit(&mask.EnrTransparent, 0, 100))
		check(limit(&mask.EnrSuppress, mask.EnrTransparent, 100))
	}
	check(limit(&s.NormalTuning.MaxIncFactor, 1, 100))
	check(limit(&s.NormalTuning.MaxDecFactorLF, 0, 1))
	check(limit(&s.GainFloor, 0, 1))

	h := &s.HighBandsSuppression
	check(limit(&h.EnrThreshold, 0, 1e5))
	check(limit(&h.MaxGainDuringEcho, 0, 1))
	check(limit(&h.AntiHowlingActivationThreshold, 0, 1e9))
	check(limit(&h.AntiHowlingGain, 0, 1))

	return ok
}

// limit clamps *v to [lo, hi] and reports whether it changed.
func limit[T cmp.Ordered](v *T, lo, hi T) bool {
	c := min(max(*v, lo), hi)
	if c != c { // NaN
		*v = lo
		return true
	}
	if c == *v {
		return false
	}
	*v = c
	return true
}
