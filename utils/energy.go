// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// SumOfSquares returns the energy of x.
func SumOfSquares(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return sum
}

// MeanSquare returns the average power of x, or 0 for an empty slice.
func MeanSquare(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	return SumOfSquares(x) / float64(len(x))
}

// RMSInt16 returns the root-mean-square of PCM16 samples.
func RMSInt16(x []int16) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

// PowerDB expresses a power ratio in decibels, floored at -100 dB.
func PowerDB(ratio float64) float64 {
	if ratio <= 1e-10 {
		return -100
	}
	return 10 * math.Log10(ratio)
}
