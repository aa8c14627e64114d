// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrUnsupportedRate = errors.New("sample rate must be 16000, 32000 or 48000 Hz")
	ErrInvalidChannels = errors.New("channel count must be positive")
	ErrBufferMismatch  = errors.New("buffer format does not match the echo canceller")
	ErrBufferNotSplit  = errors.New("multi-band buffer must be split into frequency bands")
)
