// SPDX-License-Identifier: EPL-2.0

// Package main exports the echo canceller as a C shared library.
//
// # Build Instructions
//
//	go build -buildmode=c-shared -o libaec3.so ./capi/
//
// This generates libaec3.so and libaec3.h. The configuration struct is
// declared in the generated header:
//
//	typedef struct {
//	    int32_t sample_rate;
//	    int32_t num_channels;
//	    int32_t export_linear;
//	    float   suppression_level;
//	} aec3_config_t;
//
// # C API Usage
//
//	aec3_config_t cfg = {48000, 1, 1, 1.0f};
//	uintptr_t aec = aec3_create(&cfg);
//	if (aec == 0) {
//	    return 1;
//	}
//
//	// every 10 ms
//	if (aec3_process_frame(aec, far, mic, out, linear, 480, delay) != 0) {
//	    ...
//	}
//
//	aec3_destroy(aec);
//
// Handles are integers, never pointers into Go memory. A handle must not be
// used from two threads at once; distinct handles are independent.
package main
