// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/formats/aiff"
	"github.com/ik5/aecpbx/formats/mp3"
	"github.com/ik5/aecpbx/formats/vorbis"
	"github.com/ik5/aecpbx/formats/wav"
)

var ErrUnknownFormat = errors.New("unknown audio format")

// NewRegistry returns a registry with every supported container registered
// under its common extensions.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	return r
}

var defaultRegistry = NewRegistry()

// fileSource closes the backing file along with the decoded stream.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

// Open decodes the file at path with the decoder registered for its extension.
// Closing the returned Source closes the file.
func Open(path string) (audio.Source, error) {
	return OpenWith(defaultRegistry, path)
}

// OpenWith is Open with a caller-supplied registry.
func OpenWith(reg *audio.Registry, path string) (audio.Source, error) {
	dec, ok := reg.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &fileSource{Source: src, f: f}, nil
}
