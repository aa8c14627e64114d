// SPDX-License-Identifier: EPL-2.0

// Package formats wires every codec package into an audio.Registry and opens
// audio files by extension.
package formats
