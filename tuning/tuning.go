// SPDX-License-Identifier: EPL-2.0

package tuning

import "github.com/ik5/aecpbx/engine"

const (
	MediumThreshold  float32 = 0.5
	MaximumThreshold float32 = 0.8
)

// Tier identifies one of the discrete suppression profiles.
type Tier int

const (
	TierDefault Tier = iota
	TierMedium
	TierMaximum
)

func (t Tier) String() string {
	switch t {
	case TierDefault:
		return "default"
	case TierMedium:
		return "medium"
	case TierMaximum:
		return "maximum"
	}
	return "unknown"
}

// Override is an optional parameter value. The zero value leaves the engine
// default in place.
type Override struct {
	Value float32
	Set   bool
}

func set(v float32) Override { return Override{Value: v, Set: true} }

func (o Override) apply(dst *float32) {
	if o.Set {
		*dst = o.Value
	}
}

// Profile is the set of engine parameters a tier overrides.
type Profile struct {
	Tier  Tier
	Level float32 // normalized level the profile was selected for

	MaskLFEnrTransparent Override
	MaskLFEnrSuppress    Override
	MaskHFEnrTransparent Override
	MaskHFEnrSuppress    Override

	ErleMaxL Override
	ErleMaxH Override

	LeakageConverged Override
	ErrorFloor       Override

	MaxGainDuringEcho Override
	AntiHowlingGain   Override

	AudibilityThresholdLF Override
	AudibilityThresholdMF Override
	AudibilityThresholdHF Override
}

// Normalize maps a raw level onto [0, 1]. Zero and negative levels mean
// unset and become 1; the result is then clamped.
func Normalize(level float32) float32 {
	if level <= 0 || level != level {
		level = 1
	}
	return min(max(level, 0), 1)
}

// Select returns the profile for a raw suppression level.
func Select(level float32) Profile {
	level = Normalize(level)

	switch {
	case level >= MaximumThreshold:
		return Profile{
			Tier:                  TierMaximum,
			Level:                 level,
			MaskLFEnrTransparent:  set(0.1),
			MaskLFEnrSuppress:     set(0.2),
			MaskHFEnrTransparent:  set(0.05),
			MaskHFEnrSuppress:     set(0.08),
			ErleMaxL:              set(8),
			ErleMaxH:              set(4),
			LeakageConverged:      set(0.00001),
			ErrorFloor:            set(0.0005),
			MaxGainDuringEcho:     set(0.1),
			AntiHowlingGain:       set(0.005),
			AudibilityThresholdLF: set(5),
			AudibilityThresholdMF: set(5),
			AudibilityThresholdHF: set(5),
		}
	case level >= MediumThreshold:
		return Profile{
			Tier:                 TierMedium,
			Level:                level,
			MaskLFEnrTransparent: set(0.2),
			MaskLFEnrSuppress:    set(0.3),
			MaskHFEnrTransparent: set(0.06),
			MaskHFEnrSuppress:    set(0.09),
			ErleMaxL:             set(6),
			ErleMaxH:             set(3),
			MaxGainDuringEcho:    set(0.3),
		}
	}

	return Profile{Tier: TierDefault, Level: level}
}

// Apply writes the profile's overrides into cfg.
func (p Profile) Apply(cfg *engine.Config) {
	tuning := &cfg.Suppressor.NormalTuning
	p.MaskLFEnrTransparent.apply(&tuning.MaskLF.EnrTransparent)
	p.MaskLFEnrSuppress.apply(&tuning.MaskLF.EnrSuppress)
	p.MaskHFEnrTransparent.apply(&tuning.MaskHF.EnrTransparent)
	p.MaskHFEnrSuppress.apply(&tuning.MaskHF.EnrSuppress)

	p.ErleMaxL.apply(&cfg.Erle.MaxL)
	p.ErleMaxH.apply(&cfg.Erle.MaxH)

	p.LeakageConverged.apply(&cfg.Filter.Main.LeakageConverged)
	p.ErrorFloor.apply(&cfg.Filter.Main.ErrorFloor)

	high := &cfg.Suppressor.HighBandsSuppression
	p.MaxGainDuringEcho.apply(&high.MaxGainDuringEcho)
	p.AntiHowlingGain.apply(&high.AntiHowlingGain)

	aud := &cfg.EchoAudibility
	p.AudibilityThresholdLF.apply(&aud.AudibilityThresholdLF)
	p.AudibilityThresholdMF.apply(&aud.AudibilityThresholdMF)
	p.AudibilityThresholdHF.apply(&aud.AudibilityThresholdHF)
}

// EngineConfig returns the engine defaults with the profile applied.
func (p Profile) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	p.Apply(&cfg)
	return cfg
}
