// SPDX-License-Identifier: EPL-2.0

// Package engine is a pure-Go acoustic echo controller operating on
// [audio.Buffer] chunks of 10 ms.
//
// The render (far-end) signal is analyzed band by band and kept in a short
// history. Each capture chunk is aligned against that history using the
// delay supplied by the caller, passed through a normalized LMS linear
// filter running on the lowest 16 kHz band, and finally scaled by
// suppression gains derived from the ratio of the residual echo estimate to
// the filter error. Bands above 8 kHz are not filtered; they are gated by the
// mid-frequency gain and an anti-howling bound.
//
// The tunables in [Config] follow the layout familiar from WebRTC's AEC3 so
// that profiles written for it carry over.
package engine
