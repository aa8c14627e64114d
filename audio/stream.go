// SPDX-License-Identifier: EPL-2.0

package audio

const (
	// ChunksPerSecond is the number of processing chunks per second (10 ms each).
	ChunksPerSecond = 100

	// BandRate is the sample rate of each split frequency band.
	BandRate = 16000
)

// StreamConfig describes a PCM stream.
type StreamConfig struct {
	SampleRate int
	Channels   int
}

// FramesPerChunk returns the samples per channel in one 10 ms chunk.
func (c StreamConfig) FramesPerChunk() int {
	return c.SampleRate / ChunksPerSecond
}

// SamplesPerChunk returns the interleaved sample count of one 10 ms chunk.
func (c StreamConfig) SamplesPerChunk() int {
	return c.FramesPerChunk() * c.Channels
}

func (c StreamConfig) valid() bool {
	return c.SampleRate >= ChunksPerSecond && c.Channels > 0
}

// NumBands returns how many 16 kHz bands a stream at sampleRate splits into.
// Rates at or below 16 kHz are a single band.
func NumBands(sampleRate int) (int, error) {
	if sampleRate <= BandRate {
		return 1, nil
	}
	if sampleRate%BandRate != 0 {
		return 0, ErrUnsupportedBandRate
	}
	return sampleRate / BandRate, nil
}
