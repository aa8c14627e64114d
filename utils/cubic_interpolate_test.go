// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1},
		{"end returns y2", 0, 1, 2, 3, 1, 2},
		{"linear ramp stays linear", 1, 2, 3, 4, 0.25, 2.25},
		{"constant stays constant", 0.3, 0.3, 0.3, 0.3, 0.7, 0.3},
		{"symmetric peak midpoint", 0, 1, 1, 0, 0.5, 1.125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CubicInterpolate(%v, %v, %v, %v, %v) = %v, want %v",
					tt.y0, tt.y1, tt.y2, tt.y3, tt.x, got, tt.want)
			}
		})
	}
}

func TestCubicInterpolateTracksSine(t *testing.T) {
	t.Parallel()

	// 16 samples per cycle.
	const step = math.Pi / 8
	sample := func(i int) float32 { return float32(math.Sin(float64(i) * step)) }

	for i := 1; i < 32; i++ {
		for _, x := range []float32{0.1, 0.5, 0.9} {
			got := CubicInterpolate(sample(i-1), sample(i), sample(i+1), sample(i+2), x)
			want := math.Sin((float64(i) + float64(x)) * step)
			if math.Abs(float64(got)-want) > 0.01 {
				t.Fatalf("i=%d x=%v: got %v, want %v", i, x, got, want)
			}
		}
	}
}

func TestCubicInterpolateZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	})
	if allocs != 0 {
		t.Errorf("CubicInterpolate allocated %v times", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var sink float32
	for b.Loop() {
		sink += CubicInterpolate(0.1, 0.5, -0.3, 0.2, 0.37)
	}
	_ = sink
}
