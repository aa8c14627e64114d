// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III audio through github.com/hajimehoshi/go-mp3.
//
// The decoder always produces interleaved stereo at the file's sample rate.
// Feed it through audio.Conform to get the rate and channel count a session
// expects:
//
//	f, _ := os.Open("far.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	mono48k := audio.Conform(src, 48000, 1)
package mp3
