// SPDX-License-Identifier: EPL-2.0

// Package aec runs frame-synchronous acoustic echo cancellation.
//
// A [Session] owns an echo controller, a high-pass pre-filter and the audio
// buffers and staging frames needed to move caller-owned PCM16 arrays in and
// out of them. Each call to [Session.Process] takes one 10 ms reference
// (far-end) frame and the matching capture (microphone) frame and writes the
// echo-suppressed capture into the output array, plus optionally the 16 kHz
// linear filter output.
//
// The per-frame work is an ordered list of named stages. Render analysis
// sees the reference split into 16 kHz bands; capture analysis sees the
// capture before any filtering, since the echo estimate depends on the
// unsuppressed signal.
//
// A Session is not safe for concurrent use. Independent sessions share no
// state and may run on separate goroutines.
package aec
