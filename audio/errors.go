// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize       = errors.New("dst size must be multiple of channels")
	ErrInvalidStreamConfig  = errors.New("sample rate and channel count must be positive")
	ErrUnsupportedBandRate  = errors.New("sample rate cannot be split into 16 kHz bands")
	ErrResamplingNotAllowed = errors.New("buffer input, processing and output formats must match")
	ErrFrameTooLarge        = errors.New("frame exceeds the staging capacity")
	ErrShortData            = errors.New("sample data shorter than frame")
	ErrFrameMismatch        = errors.New("frame format does not match buffer")
	ErrChannelMismatch      = errors.New("filter channel count does not match buffer")
)
