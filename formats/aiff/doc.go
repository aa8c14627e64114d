// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Samples are stored big-endian; the decoder handles 16, 24 and 32-bit PCM
// at any rate and channel count and delivers float32 in [-1, 1]:
//
//	f, _ := os.Open("mic.aif")
//	src, err := aiff.Decoder{}.Decode(f)
//
// Inputs without a FORM/AIFF header fail with ErrNotAiffFile. Other sample
// widths fail with pcmsource.ErrUnsupportedBitDepth wrapped in the error.
package aiff
