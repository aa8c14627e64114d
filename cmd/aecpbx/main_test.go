// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/aecpbx/formats/wav"
	"github.com/ik5/aecpbx/internal/audiotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEchoPair writes one second of far-end tone and its echo as WAV files.
func writeEchoPair(t *testing.T, dir, prefix string, rate int) (string, string) {
	t.Helper()

	path := audiotest.EchoPath{
		SampleRate:  rate,
		Channels:    1,
		Frequency:   1000,
		Amplitude:   10000,
		Attenuation: 0.5,
		DelayChunks: 2,
	}
	var ref, mic []int16
	for k := range 100 {
		ref = append(ref, path.Reference(k)...)
		mic = append(mic, path.Capture(k)...)
	}

	refPath := filepath.Join(dir, prefix+"far.wav")
	micPath := filepath.Join(dir, prefix+"mic.wav")
	require.NoError(t, writeWAV(refPath, rate, 1, ref))
	require.NoError(t, writeWAV(micPath, rate, 1, mic))
	return refPath, micPath
}

func readWAV(t *testing.T, path string) (int, int, int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	require.NoError(t, err)

	total := 0
	buf := make([]float32, 4096)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	return src.SampleRate(), src.Channels(), total
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
		msg  string
	}{
		{"no jobs", nil, exitUsage, "nothing to do"},
		{"unknown flag", []string{"-bogus"}, exitUsage, "bogus"},
		{"help", []string{"-h"}, exitOK, "-capture"},
		{"bad rate", []string{"-ref", "a.wav", "-capture", "b.wav", "-out", "c.wav", "-rate", "44100"}, exitUsage, "44100 Hz"},
		{"missing capture", []string{"-ref", "a.wav", "-out", "c.wav"}, exitUsage, "jobs[0].capture is required"},
		{"bad log level", []string{"-ref", "a.wav", "-capture", "b.wav", "-out", "c.wav", "-log-level", "loud"}, exitUsage, "log_level"},
		{"missing config", []string{"-config", "/nonexistent/aecpbx.yaml"}, exitError, "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			assert.Equal(t, tt.want, run(tt.args, &stderr))
			assert.Contains(t, stderr.String(), tt.msg)
		})
	}
}

func TestRunSingleJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ref, mic := writeEchoPair(t, dir, "", 16000)
	out := filepath.Join(dir, "clean.wav")
	lin := filepath.Join(dir, "linear.wav")

	var stderr bytes.Buffer
	code := run([]string{
		"-ref", ref, "-capture", mic, "-out", out, "-linear-out", lin,
		"-rate", "16000", "-channels", "1", "-delay", "2", "-level", "0.9", "-log-level", "info",
	}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stderr.String(), "job done")

	rate, ch, n := readWAV(t, out)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, 1, ch)
	assert.Equal(t, 16000, n)

	rate, _, n = readWAV(t, lin)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, 16000, n)
}

func TestRunConfigJobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var jobs string
	for i := range 3 {
		prefix := fmt.Sprintf("j%d-", i)
		ref, mic := writeEchoPair(t, dir, prefix, 32000)
		jobs += fmt.Sprintf("  - name: job%d\n    reference: %s\n    capture: %s\n    output: %s\n",
			i, ref, mic, filepath.Join(dir, prefix+"out.wav"))
	}

	cfgPath := filepath.Join(dir, "aecpbx.yaml")
	doc := "log_level: warn\nconcurrency: 2\ndelay_frames: 2\nsession:\n  sample_rate: 32000\n  channels: 1\njobs:\n" + jobs
	require.NoError(t, os.WriteFile(cfgPath, []byte(doc), 0o600))

	var stderr bytes.Buffer
	// -jobs overrides the file's concurrency.
	require.Equal(t, exitOK, run([]string{"-config", cfgPath, "-jobs", "3"}, &stderr), stderr.String())

	for i := range 3 {
		rate, ch, n := readWAV(t, filepath.Join(dir, fmt.Sprintf("j%d-out.wav", i)))
		assert.Equal(t, 32000, rate)
		assert.Equal(t, 1, ch)
		assert.Equal(t, 32000, n)
	}
}

func TestRunJobFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var stderr bytes.Buffer
	code := run([]string{
		"-ref", filepath.Join(dir, "missing.wav"),
		"-capture", filepath.Join(dir, "missing-too.wav"),
		"-out", filepath.Join(dir, "out.wav"),
		"-rate", "16000",
	}, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "missing.wav")
	assert.NoFileExists(t, filepath.Join(dir, "out.wav"))
}
