// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout: only linear PCM is supported")
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks: no data chunk")
	ErrInvalidWriterFormat  = errors.New("invalid WAV writer format")
)
