// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// mockMP3Reader serves little-endian int16 PCM in chunks of at most step bytes.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	step       int
	err        error
}

func newMockMP3Reader(rate, step int, samples ...int16) *mockMP3Reader {
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: rate, data: data, step: step}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(buf), len(m.data), m.step)
	copy(buf, m.data[:n])
	m.data = m.data[n:]
	return n, nil
}

func TestDecoderRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil", data)
		}
	}
}

func TestSourceReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		step int
	}{
		{"whole reads", 1 << 20},
		// Odd steps split samples across Read calls.
		{"split samples", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: newMockMP3Reader(44100, tt.step, 0, 16384, -16384, -32768, 32767), sampleRate: 44100}
			if src.Channels() != 2 || src.SampleRate() != 44100 {
				t.Fatalf("format = %d Hz x%d", src.SampleRate(), src.Channels())
			}

			dst := make([]float32, 4)
			n, err := src.ReadSamples(dst)
			if err != nil || n != 4 {
				t.Fatalf("ReadSamples() = %d, %v; want 4, nil", n, err)
			}
			want := []float32{0, 0.5, -0.5, -1}
			for i := range want {
				if dst[i] != want[i] {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
				}
			}

			n, err = src.ReadSamples(dst)
			if n != 1 || !errors.Is(err, io.EOF) {
				t.Fatalf("tail ReadSamples() = %d, %v; want 1, EOF", n, err)
			}
			if dst[0] != float32(32767)/32768 {
				t.Errorf("tail sample = %v", dst[0])
			}

			n, err = src.ReadSamples(dst)
			if n != 0 || !errors.Is(err, io.EOF) {
				t.Errorf("after EOF ReadSamples() = %d, %v", n, err)
			}
		})
	}
}

func TestSourceReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	src := &source{dec: &mockMP3Reader{err: boom}}
	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestSourceEmptyDst(t *testing.T) {
	t.Parallel()

	src := &source{dec: newMockMP3Reader(48000, 16, 1, 2)}
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
	if got := src.BufSize(); got != 0 {
		t.Errorf("BufSize() = %d before any read", got)
	}
	src.ReadSamples(make([]float32, 10))
	if got := src.BufSize(); got != 10 {
		t.Errorf("BufSize() = %d, want 10", got)
	}
}

func BenchmarkSourceReadSamples(b *testing.B) {
	samples := make([]int16, 48000*2)
	dst := make([]float32, 960)
	b.ReportAllocs()
	for b.Loop() {
		src := &source{dec: newMockMP3Reader(48000, 4096, samples...), sampleRate: 48000}
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
