// SPDX-License-Identifier: EPL-2.0

package engine

// renderStats summarizes one analyzed render frame. Powers are mean squares
// per sample; block energies cover the last BlockSize samples.
type renderStats struct {
	power     float64 // band 0
	lowPower  float64
	midPower  float64
	highPower float64 // bands above band 0

	lowBlockEnergy  float64
	highBlockEnergy float64
}

// renderHistory keeps the mono band-0 render signal and per-frame statistics
// for as far back as the largest delay plus the filter length reaches.
type renderHistory struct {
	frameLen int
	samples  []float64
	written  int

	stats  []renderStats
	frames int

	crossover crossover
	low       []float64
}

func newRenderHistory(maxDelayFrames, taps, frameLen int) *renderHistory {
	return &renderHistory{
		frameLen:  frameLen,
		samples:   make([]float64, (maxDelayFrames+1)*frameLen+taps),
		stats:     make([]renderStats, maxDelayFrames+1),
		crossover: newCrossover(frameLen * 100),
		low:       make([]float64, frameLen),
	}
}

// push appends one frame of mono band-0 render audio. high holds the
// channel-averaged energy of every band above band 0, in full and over the
// final block.
func (h *renderHistory) push(band0 []float64, highPower, highBlockEnergy float64) {
	for _, v := range band0 {
		h.samples[h.written%len(h.samples)] = v
		h.written++
	}

	var st renderStats
	st.lowPower, st.midPower = h.crossover.split(band0, h.low)
	for _, v := range band0 {
		st.power += v * v
	}
	st.power /= float64(len(band0))
	for _, v := range band0[len(band0)-BlockSize:] {
		st.lowBlockEnergy += v * v
	}
	st.highPower = highPower
	st.highBlockEnergy = highBlockEnergy

	h.stats[h.frames%len(h.stats)] = st
	h.frames++
}

// at returns the render sample with absolute index abs, or zero when it was
// never written or has already been overwritten.
func (h *renderHistory) at(abs int) float64 {
	if abs < 0 || abs >= h.written || abs < h.written-len(h.samples) {
		return 0
	}
	return h.samples[abs%len(h.samples)]
}

// gather fills dst with the render samples ending at the last sample of
// frame, oldest first.
func (h *renderHistory) gather(dst []float64, frame int) {
	end := (frame + 1) * h.frameLen
	start := end - len(dst)
	for i := range dst {
		dst[i] = h.at(start + i)
	}
}

// frameStats returns the statistics of an analyzed frame still in range.
func (h *renderHistory) frameStats(frame int) (renderStats, bool) {
	if frame < 0 || frame >= h.frames || frame < h.frames-len(h.stats) {
		return renderStats{}, false
	}
	return h.stats[frame%len(h.stats)], true
}

func (h *renderHistory) reset() {
	clear(h.samples)
	clear(h.stats)
	h.written = 0
	h.frames = 0
	h.crossover.reset()
}
