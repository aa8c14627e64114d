// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"fmt"
	"os"

	"github.com/ik5/aecpbx/audio"
	"github.com/ik5/aecpbx/formats/mp3"
)

func ExampleDecoder_Decode() {
	f, err := os.Open("far.mp3")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	src, err := mp3.Decoder{}.Decode(f)
	if err != nil {
		fmt.Println(err)
		return
	}

	frames := audio.NewFrameReader(audio.Conform(src, 16000, 1))
	frame := make([]int16, 160)
	for {
		if _, err := frames.ReadFrame(frame); err != nil {
			break
		}
	}
}
