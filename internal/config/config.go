// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML job description used by cmd/aecpbx.
package config

import (
	"runtime"

	"github.com/ik5/aecpbx/aec"
)

// Config is the top level of an aecpbx YAML file.
type Config struct {
	// LogLevel is any level logrus understands (debug, info, warn, error, ...).
	LogLevel string `yaml:"log_level"`

	// Concurrency caps how many jobs run at once.
	Concurrency int `yaml:"concurrency"`

	// Session applies to every job.
	Session aec.Config `yaml:"session"`

	// DelayFrames is the render to capture delay in 10 ms frames, used by
	// jobs that don't set their own.
	DelayFrames int `yaml:"delay_frames"`

	Jobs []Job `yaml:"jobs"`
}

// Job is one reference/capture pair to process.
type Job struct {
	Name      string `yaml:"name"`
	Reference string `yaml:"reference"`
	Capture   string `yaml:"capture"`
	Output    string `yaml:"output"`

	// LinearOutput, when set, also writes the linear filter output there and
	// turns on linear export for this job's session.
	LinearOutput string `yaml:"linear_output"`

	DelayFrames *int `yaml:"delay_frames"`
}

// Delay returns the job's delay, falling back to def.
func (j Job) Delay(def int) int {
	if j.DelayFrames != nil {
		return *j.DelayFrames
	}
	return def
}

// SessionConfig returns base adjusted for this job.
func (j Job) SessionConfig(base aec.Config) aec.Config {
	if j.LinearOutput != "" {
		base.ExportLinear = true
	}
	return base
}

// Label names the job in logs, falling back to its output path.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Output
}

// Default returns the values used for anything a file leaves out.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		Concurrency: runtime.GOMAXPROCS(0),
		Session: aec.Config{
			SampleRate:       48000,
			Channels:         1,
			SuppressionLevel: 1,
		},
	}
}
