// SPDX-License-Identifier: EPL-2.0

package main

/*
#include <stdint.h>

typedef struct {
    int32_t sample_rate;
    int32_t num_channels;
    int32_t export_linear;
    float   suppression_level;
} aec3_config_t;
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/ik5/aecpbx/aec"
)

func main() {}

// Session registry. Handle 0 is never issued.
var (
	sessions           = make(map[uintptr]*aec.Session)
	nextHandle uintptr = 1
	sessionsMu sync.RWMutex
)

// configFromC copies a C configuration into the Go form.
func configFromC(p unsafe.Pointer) aec.Config {
	c := (*C.aec3_config_t)(p)
	return aec.Config{
		SampleRate:       int(c.sample_rate),
		Channels:         int(c.num_channels),
		ExportLinear:     c.export_linear != 0,
		SuppressionLevel: float32(c.suppression_level),
	}
}

// aec3_create creates a session and returns its handle, or 0 when config
// is NULL or describes an unsupported format.
//
//export aec3_create
func aec3_create(config unsafe.Pointer) uintptr {
	if config == nil {
		return 0
	}

	cfg := configFromC(config)
	s, err := aec.New(&cfg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "aec3_create",
			"sample_rate": cfg.SampleRate,
			"channels":    cfg.Channels,
			"error":       err.Error(),
		}).Warn("Failed to create echo cancellation session")
		return 0
	}

	sessionsMu.Lock()
	defer sessionsMu.Unlock()

	handle := nextHandle
	nextHandle++
	sessions[handle] = s
	return handle
}

// aec3_process_frame processes one frame pair. reference, capture and
// output hold frame_size samples per channel; linear_output, when not NULL
// and the session exports linear output, receives 320 samples. It returns
// 0 on success and -1 on failure.
//
//export aec3_process_frame
func aec3_process_frame(handle uintptr, reference, capture, output, linearOutput unsafe.Pointer, frameSize uintptr, bufferDelay int32) int32 {
	sessionsMu.RLock()
	defer sessionsMu.RUnlock()

	s := sessions[handle]
	if s == nil || reference == nil || capture == nil || output == nil {
		return int32(aec.StatusCode(aec.ErrNilFrame))
	}

	// Checked before any slice is built: a wild size_t must not reach
	// unsafe.Slice.
	cfg := s.Config()
	if frameSize != uintptr(cfg.FrameLength()) {
		return int32(aec.StatusCode(aec.ErrFrameLength))
	}

	n := cfg.FrameLength() * cfg.Channels
	var linear []int16
	if linearOutput != nil {
		linear = unsafe.Slice((*int16)(linearOutput), aec.LinearOutputSamples)
	}

	err := s.Process(
		unsafe.Slice((*int16)(reference), n),
		unsafe.Slice((*int16)(capture), n),
		unsafe.Slice((*int16)(output), n),
		linear,
		int(frameSize),
		int(bufferDelay),
	)
	return int32(aec.StatusCode(err))
}

// aec3_destroy releases a session. Unknown handles, including 0 and
// handles already destroyed, are ignored.
//
//export aec3_destroy
func aec3_destroy(handle uintptr) {
	sessionsMu.Lock()
	s, ok := sessions[handle]
	delete(sessions, handle)
	sessionsMu.Unlock()

	if ok {
		_ = s.Close()
	}
}
