// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts a Source to a different channel count. Downmixing
// averages every input channel i into output channel i mod N; upmixing
// repeats input channel c mod M into output channel c.
type ChannelMapper struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

// NewMonoMixer averages all channels of src into one.
func NewMonoMixer(src Source) *ChannelMapper {
	return NewChannelMapper(src, 1)
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.channels }
func (m *ChannelMapper) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	if in > m.channels {
		for f := range frames {
			frame := m.tmp[f*in : f*in+in]
			out := dst[f*m.channels : f*m.channels+m.channels]
			clear(out)
			for i, v := range frame {
				out[i%m.channels] += v
			}
			for c := range out {
				// number of input channels folded into output c
				folded := (in - c + m.channels - 1) / m.channels
				out[c] /= float32(folded)
			}
		}
	} else {
		for f := range frames {
			for c := range m.channels {
				dst[f*m.channels+c] = m.tmp[f*in+c%in]
			}
		}
	}

	return frames * m.channels, err
}
