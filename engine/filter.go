// SPDX-License-Identifier: EPL-2.0

package engine

import "math"

// regularizationPerTap keeps the NLMS normalization away from zero on
// near-silent render.
const regularizationPerTap = 100

// adaptiveFilter is a normalized LMS FIR estimate of the echo path of one
// capture channel.
type adaptiveFilter struct {
	w   []float64
	cfg MainFilterConfig
}

func newAdaptiveFilter(cfg MainFilterConfig) *adaptiveFilter {
	return &adaptiveFilter{
		w:   make([]float64, cfg.LengthBlocks*BlockSize),
		cfg: cfg,
	}
}

func (f *adaptiveFilter) taps() int { return len(f.w) }

// filter runs one frame. seg holds taps()-1 render samples of history
// followed by the render samples aligned with capture. The echo estimate is
// written to echo and capture-minus-echo to errOut. With adapt set, the
// weights are updated sample by sample; the return value counts the updates
// actually applied.
func (f *adaptiveFilter) filter(seg []float64, capture []float32, echo, errOut []float64, adapt bool) int {
	taps := len(f.w)
	mu := float64(f.cfg.StepSize)
	floor := float64(f.cfg.ErrorFloor)
	ceil := float64(f.cfg.ErrorCeil)
	reg := float64(taps) * regularizationPerTap

	updates := 0
	for i, c := range capture {
		x := seg[i : i+taps] // oldest first; x[taps-1] aligns with c

		var y, power float64
		for j, wj := range f.w {
			v := x[taps-1-j]
			y += wj * v
			power += v * v
		}
		e := float64(c) - y
		echo[i] = y
		errOut[i] = e

		if !adapt {
			continue
		}
		perTap := power / float64(taps)
		if perTap == 0 || e*e < floor*perTap {
			continue
		}
		bound := ceil * math.Sqrt(perTap)
		e = min(max(e, -bound), bound)

		g := mu * e / (power + reg)
		for j := range f.w {
			f.w[j] += g * x[taps-1-j]
		}
		updates++
	}

	return updates
}

// leak shrinks the weights by the given fraction.
func (f *adaptiveFilter) leak(fraction float32) {
	if fraction == 0 {
		return
	}
	k := 1 - float64(fraction)
	for j := range f.w {
		f.w[j] *= k
	}
}

func (f *adaptiveFilter) reset() { clear(f.w) }
