// SPDX-License-Identifier: EPL-2.0

package mixer_test

import (
	"context"
	"fmt"

	"github.com/ik5/karamix/internal/audiotest"
	"github.com/ik5/karamix/mixer"
)

// Example exports a mix headlessly: no output device is needed for an
// offline render.
func Example() {
	m := mixer.New(mixer.NewContext(8000, nil))

	backing := audiotest.Seconds(8000, 2, 3, 0.25)
	vocal := audiotest.Seconds(8000, 1, 2, 0.5)
	if err := m.SetBuffers(backing, vocal); err != nil {
		fmt.Println(err)
		return
	}

	file, err := m.Export(context.Background(), mixer.RecordingStart{Seconds: 0.5}, 0.7, 1.0)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(file.Duration(), file.Channels, file.SampleRate, file.ContentType)
	// Output: 2s 2 8000 audio/wav
}

// ExampleRelativeOffset_Timeline shows how a negative offset holds the
// backing track back.
func ExampleRelativeOffset_Timeline() {
	tl := mixer.RelativeOffset{Millis: -250}.Timeline(10, 8)

	fmt.Println(tl.BackingStart, tl.VocalStart, tl.Total())
	// Output: 0.25 0 10.25
}

// ExampleMixer_PlayPreview plays a preview on a fake device and lets the
// auto-stop timer end it.
func ExampleMixer_PlayPreview() {
	dev := audiotest.NewFakeDevice(true)
	clock := &audiotest.Clock{}
	m := mixer.New(mixer.NewContext(8000, dev.Opener()), mixer.WithAfterFunc(clock.AfterFunc))

	m.SetBuffers(audiotest.Seconds(8000, 2, 2, 0.25), audiotest.Seconds(8000, 1, 2, 0.5))
	if err := m.PlayPreview(mixer.RelativeOffset{Millis: 500}, 0.7, 1.0); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("playing:", m.IsPlaying(), "nodes:", m.ActiveNodes())

	last, _ := clock.Last()
	clock.Advance(last)
	fmt.Println("playing:", m.IsPlaying(), "nodes:", m.ActiveNodes())
	// Output:
	// playing: true nodes: 2
	// playing: false nodes: 0
}
