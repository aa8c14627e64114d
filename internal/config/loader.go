// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over Default and validates the result.
// Unknown keys are an error. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns every problem in cfg joined into one error. An empty job
// list is valid; jobs may come from the command line.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if cfg.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency %d must be at least 1", cfg.Concurrency))
	}
	if err := cfg.Session.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if cfg.DelayFrames < 0 {
		errs = append(errs, fmt.Errorf("delay_frames %d is negative", cfg.DelayFrames))
	}

	outputs := make(map[string]int, 2*len(cfg.Jobs))
	claim := func(prefix, field, path string, i int) {
		if prev, ok := outputs[path]; ok {
			errs = append(errs, fmt.Errorf("%s.%s %q is also written by jobs[%d]", prefix, field, path, prev))
			return
		}
		outputs[path] = i
	}

	for i, job := range cfg.Jobs {
		prefix := fmt.Sprintf("jobs[%d]", i)
		if job.Reference == "" {
			errs = append(errs, fmt.Errorf("%s.reference is required", prefix))
		}
		if job.Capture == "" {
			errs = append(errs, fmt.Errorf("%s.capture is required", prefix))
		}
		if job.Output == "" {
			errs = append(errs, fmt.Errorf("%s.output is required", prefix))
		} else {
			claim(prefix, "output", job.Output, i)
		}
		if job.LinearOutput != "" {
			claim(prefix, "linear_output", job.LinearOutput, i)
			if cfg.Session.Channels > 2 {
				errs = append(errs, fmt.Errorf("%s.linear_output needs at most 2 channels, session has %d", prefix, cfg.Session.Channels))
			}
		}
		if job.DelayFrames != nil && *job.DelayFrames < 0 {
			errs = append(errs, fmt.Errorf("%s.delay_frames %d is negative", prefix, *job.DelayFrames))
		}
	}

	return errors.Join(errs...)
}
