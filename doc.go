// SPDX-License-Identifier: EPL-2.0

// Package aecpbx cancels acoustic echo in 16-bit PCM audio.
//
// The work is done frame by frame by an aec.Session: each call takes one
// 10 ms reference (far-end, what the loudspeaker played) frame and one
// capture (microphone) frame and writes the capture with the echo removed.
// This package adds a whole-stream entry point on top of that:
//
//	far, _ := formats.Open("far.wav")
//	defer far.Close()
//	mic, _ := formats.Open("mic.wav")
//	defer mic.Close()
//
//	res, err := aecpbx.CancelEcho(far, mic, aec.Config{
//		SampleRate:       48000,
//		Channels:         1,
//		SuppressionLevel: 0.6,
//	}, 4)
//
// # Packages
//
//   - aec: sessions and the per-frame processing pipeline
//   - tuning: maps a suppression level in [0, 1] to engine parameters
//   - engine: the adaptive echo canceller and residual echo suppressor
//   - audio: frames, band-split buffers, high-pass filter and stream helpers
//   - formats: WAV, AIFF, MP3 and Ogg Vorbis decoding, WAV writing
//   - capi: a C shared library exposing sessions through integer handles
//
// # Streams
//
// CancelEcho converts both inputs to the session format with audio.Conform,
// slices them with audio.FrameReader and feeds the pairs to one session. The
// output has the capture's length; a short reference is padded with silence.
//
// Sessions are not safe for concurrent use. Independent sessions are, and
// cmd/aecpbx runs one per job in parallel.
package aecpbx
