// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through github.com/jfreymuth/oggvorbis.
//
// Channel count and rate come from the stream's identification header.
// Reads may come back short at packet boundaries, so callers should loop
// until io.EOF (audio.FrameReader does).
package vorbis
