// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files through github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts linear PCM at 16, 24 or 32 bits, any channel count and
// any sample rate. Samples are delivered as float32 in [-1, 1]:
//
//	f, _ := os.Open("far.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Non-PCM format tags fail with ErrUnsupportedWavLayout, files without a
// data chunk with ErrUnsupportedWavChunks.
//
// # Encoding
//
// WriteWAV16 writes interleaved int16 samples, which is the format the echo
// canceller produces. The destination must be an io.WriteSeeker because the
// RIFF sizes are patched once all data is written:
//
//	out, _ := os.Create("clean.wav")
//	defer out.Close()
//	err := wav.WriteWAV16(out, 48000, 2, samples)
package wav
