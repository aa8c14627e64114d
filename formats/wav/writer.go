// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth16 = 16

	// writeChunkFrames bounds the intermediate int buffer handed to the encoder.
	writeChunkFrames = 4096
)

// WriteWAV16 writes interleaved 16-bit PCM samples as a WAV stream.
// The header sizes are patched on completion, which is why w must seek.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	if sampleRate <= 0 || channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("%w: rate=%d channels=%d samples=%d",
			ErrInvalidWriterFormat, sampleRate, channels, len(samples))
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth16, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth16,
	}

	step := writeChunkFrames * channels
	data := make([]int, min(step, len(samples)))

	// Always hand the encoder at least one buffer so the header is written.
	for off := 0; off == 0 || off < len(samples); off += step {
		chunk := samples[off:min(off+step, len(samples))]
		buf.Data = data[:len(chunk)]
		for i, s := range chunk {
			buf.Data[i] = int(s)
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav data: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}
	return nil
}
