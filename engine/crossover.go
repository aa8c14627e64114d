// SPDX-License-Identifier: EPL-2.0

package engine

import "math"

// crossoverHz divides the 16 kHz band into its low-frequency (LF) and
// mid-frequency (MF) regions.
const crossoverHz = 2000

// crossover is a one-pole low-pass whose complement yields the upper part,
// so low+mid always reconstructs the input exactly.
type crossover struct {
	alpha float64
	state float64
}

func newCrossover(sampleRate int) crossover {
	return crossover{alpha: 1 - math.Exp(-2*math.Pi*crossoverHz/float64(sampleRate))}
}

// split writes the low part of x into low and returns the mean-square power
// of the low and mid parts.
func (c *crossover) split(x, low []float64) (lowPower, midPower float64) {
	for i, v := range x {
		c.state += c.alpha * (v - c.state)
		low[i] = c.state
		mid := v - c.state
		lowPower += c.state * c.state
		midPower += mid * mid
	}
	n := float64(len(x))
	return lowPower / n, midPower / n
}

func (c *crossover) reset() { c.state = 0 }
