// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/aecpbx/internal/audiotest"
)

func TestConform(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 2, 441)
	if got := Conform(src, 44100, 2); got != Source(src) {
		t.Error("Conform() wrapped a source that already matched")
	}

	got := Conform(src, 16000, 1)
	if got.SampleRate() != 16000 || got.Channels() != 1 {
		t.Errorf("Conform() = %d x %d, want 16000 x 1", got.SampleRate(), got.Channels())
	}
}

func TestFrameReader(t *testing.T) {
	t.Parallel()

	// 250 frames: one full chunk of 160 plus a short one of 90.
	src := audiotest.NewConstantSource(16000, 1, 250, 0.5)
	r := NewFrameReader(src)
	dst := make([]int16, 160)

	n, err := r.ReadFrame(dst)
	if err != nil || n != 160 {
		t.Fatalf("first ReadFrame() = %d, %v", n, err)
	}
	if dst[0] != 16383 {
		t.Errorf("sample = %d, want 16383", dst[0])
	}

	n, err = r.ReadFrame(dst)
	if err != nil || n != 90 {
		t.Fatalf("second ReadFrame() = %d, %v, want 90, nil", n, err)
	}
	if dst[89] == 0 || dst[90] != 0 || dst[159] != 0 {
		t.Errorf("short frame not zero-padded: %d %d %d", dst[89], dst[90], dst[159])
	}

	if _, err := r.ReadFrame(dst); !errors.Is(err, io.EOF) {
		t.Errorf("third ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestFrameReader_InvalidDst(t *testing.T) {
	t.Parallel()

	r := NewFrameReader(audiotest.NewSilentSource(16000, 2, 100))
	if _, err := r.ReadFrame(make([]int16, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadFrame() error = %v, want ErrInvalidDstSize", err)
	}
}
