// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/internal/pcmsource"
)

type Decoder struct{}

// Decode reads the COMM chunk of r and streams its SSND samples. go-audio
// needs to seek, so plain readers are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcmsource.ReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("reading aiff data: %w", err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	src, err := pcmsource.New(dec, int(dec.BitDepth))
	if errors.Is(err, pcmsource.ErrInvalidFormat) {
		return nil, ErrUnsupportedAiffLayout
	}
	if err != nil {
		return nil, fmt.Errorf("aiff: %w", err)
	}
	return src, nil
}
