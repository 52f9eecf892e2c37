// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ik5/karamix/audio"
	"github.com/ik5/karamix/formats/wav"
)

func ExampleEncodeBytes() {
	buf, _ := audio.NewBufferFromChannels(8000, [][]float32{{0, 0.5, -0.5, 0}})

	data, err := wav.EncodeBytes(context.Background(), buf, wav.DefaultChunkFrames)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(len(data), string(data[:4]), string(data[8:12]))
	// Output: 52 RIFF WAVE
}

func ExampleDecoder_Decode() {
	buf, _ := audio.NewBufferFromChannels(8000, [][]float32{{0.5, 0.5}, {-0.5, -0.5}})
	data, _ := wav.EncodeBytes(context.Background(), buf, 0)

	src, err := wav.Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		fmt.Println(err)
		return
	}

	decoded, _ := audio.ReadAll(context.Background(), src)
	fmt.Println(decoded.SampleRate(), decoded.NumberOfChannels(), decoded.Length())
	// Output: 8000 2 2
}
