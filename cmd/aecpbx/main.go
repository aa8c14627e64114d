// SPDX-License-Identifier: EPL-2.0

// Command aecpbx removes the echo of a far-end recording from a microphone
// recording.
//
//	aecpbx -ref far.wav -capture mic.wav -out clean.wav -delay 4
//	aecpbx -config jobs.yaml -jobs 8
//
// Inputs may be WAV, AIFF, MP3 or Ogg Vorbis; outputs are 16-bit WAV.
// Command line values override the config file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/aecpbx"
	"github.com/ik5/aecpbx/aec"
	"github.com/ik5/aecpbx/formats"
	"github.com/ik5/aecpbx/formats/wav"
	"github.com/ik5/aecpbx/internal/config"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("aecpbx", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "YAML file with session settings and jobs")
	ref := fs.String("ref", "", "far-end (reference) audio file")
	capture := fs.String("capture", "", "microphone (capture) audio file")
	out := fs.String("out", "", "output WAV file")
	linearOut := fs.String("linear-out", "", "optional WAV file for the 16 kHz linear filter output")
	rate := fs.Int("rate", 0, "session sample rate: 16000, 32000 or 48000")
	channels := fs.Int("channels", 0, "session channel count")
	level := fs.Float64("level", 0, "suppression level in [0, 1]; 0 or below selects the maximum")
	delay := fs.Int("delay", 0, "render to capture delay in 10 ms frames")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	jobs := fs.Int("jobs", 0, "maximum number of jobs processed in parallel")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "aecpbx: %v\n", err)
			return exitError
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["rate"] {
		cfg.Session.SampleRate = *rate
	}
	if set["channels"] {
		cfg.Session.Channels = *channels
	}
	if set["level"] {
		cfg.Session.SuppressionLevel = float32(*level)
	}
	if set["delay"] {
		cfg.DelayFrames = *delay
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["jobs"] {
		cfg.Concurrency = *jobs
	}
	if *ref != "" || *capture != "" || *out != "" {
		cfg.Jobs = append(cfg.Jobs, config.Job{
			Reference:    *ref,
			Capture:      *capture,
			Output:       *out,
			LinearOutput: *linearOut,
		})
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "aecpbx: %v\n", err)
		return exitUsage
	}
	if len(cfg.Jobs) == 0 {
		fmt.Fprintln(stderr, "aecpbx: nothing to do; pass -ref, -capture and -out or a -config with jobs")
		fs.Usage()
		return exitUsage
	}

	logger := newLogger(stderr, cfg.LogLevel)
	if err := processAll(context.Background(), logger, cfg); err != nil {
		logger.WithError(err).Error("aecpbx failed")
		return exitError
	}
	return exitOK
}

func newLogger(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	// Validate has already rejected unknown levels.
	lvl, _ := logrus.ParseLevel(level)
	l.SetLevel(lvl)
	return l
}

// processAll runs the jobs with at most cfg.Concurrency in flight. The first
// failure cancels jobs that have not started yet.
func processAll(ctx context.Context, logger *logrus.Logger, cfg *config.Config) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for _, job := range cfg.Jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry := logger.WithFields(logrus.Fields{
				"function": "processJob",
				"job":      job.Label(),
			})
			if err := processJob(entry, cfg, job); err != nil {
				return fmt.Errorf("job %s: %w", job.Label(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func processJob(log *logrus.Entry, cfg *config.Config, job config.Job) error {
	ref, err := formats.Open(job.Reference)
	if err != nil {
		return err
	}
	defer ref.Close()

	mic, err := formats.Open(job.Capture)
	if err != nil {
		return err
	}
	defer mic.Close()

	sess := job.SessionConfig(cfg.Session)
	res, err := aecpbx.CancelEcho(ref, mic, sess, job.Delay(cfg.DelayFrames), aec.WithLogger(log))
	if err != nil {
		return err
	}

	if err := writeWAV(job.Output, res.SampleRate, res.Channels, res.Output); err != nil {
		return err
	}
	if job.LinearOutput != "" {
		if err := writeWAV(job.LinearOutput, aec.LinearOutputRate, res.Channels, res.Linear); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"frames":    res.Frames,
		"erl_db":    res.Metrics.EchoReturnLoss,
		"erle_db":   res.Metrics.EchoReturnLossEnhancement,
		"divergent": res.Metrics.DivergentFilterCount,
		"output":    job.Output,
	}).Info("job done")
	return nil
}

func writeWAV(path string, rate, channels int, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wav.WriteWAV16(f, rate, channels, samples); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
