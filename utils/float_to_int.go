// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 converts a normalized sample in [-1, 1] to PCM16.
func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// FloatS16ToInt16 converts a sample expressed in the PCM16 range
// (-32768..32767, float) to int16, rounding to nearest and saturating.
func FloatS16ToInt16(x float32) int16 {
	if x >= math.MaxInt16 {
		return math.MaxInt16
	}
	if x <= math.MinInt16 {
		return math.MinInt16
	}
	if x >= 0 {
		return int16(x + 0.5)
	}
	return int16(x - 0.5)
}

// Int16ToFloatS16 widens a PCM16 sample without rescaling.
func Int16ToFloatS16(v int16) float32 {
	return float32(v)
}
