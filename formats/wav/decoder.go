// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/internal/pcmsource"
)

// wavFormatPCM is the WAVE format tag for linear PCM.
const wavFormatPCM = 1

type Decoder struct{}

// Decode parses the RIFF header of r and returns a Source positioned at the
// start of the data chunk. Readers that cannot seek are buffered in memory.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcmsource.ReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w (format tag %d)", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}
	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, ErrUnsupportedWavChunks
	}

	src, err := pcmsource.New(dec, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return src, nil
}
