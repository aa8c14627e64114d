// SPDX-License-Identifier: EPL-2.0

package aec

import "errors"

var (
	ErrNilConfig        = errors.New("aec: nil config")
	ErrNilSession       = errors.New("aec: nil session")
	ErrClosed           = errors.New("aec: session closed")
	ErrNilFrame         = errors.New("aec: reference, capture and output frames are required")
	ErrFrameLength      = errors.New("aec: frame length must be one 10 ms chunk")
	ErrShortFrame       = errors.New("aec: frame shorter than frame length times channels")
	ErrShortLinearFrame = errors.New("aec: linear output shorter than 320 samples")
	ErrUnsupportedRate  = errors.New("aec: sample rate must be 16000, 32000 or 48000 Hz")
	ErrInvalidChannels  = errors.New("aec: channel count out of range")
)

// StatusCode maps the result of a call to the integer status used at the C
// boundary: 0 on success, -1 on any failure.
func StatusCode(err error) int {
	if err != nil {
		return -1
	}
	return 0
}
