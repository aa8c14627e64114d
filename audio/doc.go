// SPDX-License-Identifier: EPL-2.0

// Package audio provides the audio containers and primitives the echo
// canceller is built on.
//
// # Chunk Processing
//
// Echo cancellation works on 10 ms chunks. Three types cooperate:
//
//   - Frame stages caller-owned interleaved PCM16 samples. It is backed by a
//     go-audio IntBuffer and can be reformatted in place with Update.
//   - Buffer holds one chunk deinterleaved per channel in the PCM16 value
//     range. It copies from and to a Frame and can be split into critically
//     sampled 16 kHz sub-bands and merged back losslessly.
//   - HighPassFilter removes DC and rumble from a Buffer, either full band or
//     on the lowest split band.
//
// A typical capture chunk looks like:
//
//	frame := audio.NewFrame()
//	cfg := audio.StreamConfig{SampleRate: 48000, Channels: 1}
//	buf, _ := audio.NewBuffer(cfg, cfg, cfg)
//
//	frame.Update(pcm, 480, 48000, 1)
//	buf.CopyFrom(frame)
//	buf.SplitIntoFrequencyBands()
//	// ... process buf.Band(ch, band) ...
//	buf.MergeFrequencyBands()
//	buf.CopyTo(frame)
//
// # Streams
//
// Source is a pull-based stream of float32 samples in [-1.0, 1.0], produced
// by the decoders in the formats packages:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Streams are brought to a session's format with Conform, which chains a
// cubic Resampler and a ChannelMapper as needed, and cut into PCM16 chunks
// with FrameReader:
//
//	src = audio.Conform(src, 48000, 1)
//	reader := audio.NewFrameReader(src)
//	chunk := make([]int16, 480)
//	for {
//	    n, err := reader.ReadFrame(chunk)
//	    if err == io.EOF {
//	        break
//	    }
//	    // chunk holds n real samples, zero padded
//	}
//
// # Format Registry
//
// The registry maps file extensions to decoders. formats.NewRegistry returns
// one with every bundled codec registered:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.ForPath("far-end.wav")
package audio
